package cli_test

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/fideboard/internal/adapters/http/api"
	service "github.com/okian/fideboard/internal/app"
	"github.com/okian/fideboard/internal/cli"
)

const header = "ID Number      Name                                                         Fed Sex Tit  WTit OTit           FOA OCT25 Gms  K  B-day Flag\n"

func line(id, name, fed string, rating int) string {
	b := bytes.Repeat([]byte(" "), 135)
	copy(b[0:], id)
	copy(b[15:], name)
	copy(b[76:], fed)
	copy(b[79:], "M")
	copy(b[113:], fmt.Sprint(rating))
	copy(b[126:], "1990")
	return string(b) + "\n"
}

// listText builds a list of n players rated from top downwards, shifted by bump.
func listText(n, top, bump int) string {
	text := header
	for i := 0; i < n; i++ {
		text += line(fmt.Sprintf("%07d", 1000000+i), fmt.Sprintf("Player, %03d", i), "NOR", top-i*3+(i%7)*bump)
	}
	return text
}

// setupCLITest isolates the command from any config in the working directory.
func setupCLITest(t *testing.T) {
	t.Helper()
	t.Setenv("FIDEBOARD_DOTENV", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("FIDEBOARD_LOG_LEVEL", "error")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := cli.NewRootCmd("test")
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestVersion(t *testing.T) {
	setupCLITest(t)

	out, err := run(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "test")
}

func TestSeed_RequiresSource(t *testing.T) {
	setupCLITest(t)

	_, err := run(t, "seed", "--db", filepath.Join(t.TempDir(), "fide.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--file or --dir")
}

func TestSeed_FileAndDirExclusive(t *testing.T) {
	setupCLITest(t)

	_, err := run(t, "seed", "--file", "a.txt", "--dir", "lists")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "none of the others can be")
}

func TestSeed_BadDate(t *testing.T) {
	setupCLITest(t)

	path := filepath.Join(t.TempDir(), "players_list.txt")
	require.NoError(t, os.WriteFile(path, []byte(listText(3, 2800, 0)), 0o644))

	_, err := run(t, "seed", "--file", path, "--date", "October 2025", "--db", filepath.Join(t.TempDir(), "fide.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--date must be YYYY-MM-DD")

	_, err = run(t, "seed", "--file", path, "--db", filepath.Join(t.TempDir(), "fide.db"))
	require.Error(t, err, "a file without a list month in its name needs --date")
}

func TestSeedThenVerify(t *testing.T) {
	setupCLITest(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "standard_sep25frl.txt"), []byte(listText(40, 2830, 0)), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "standard_oct25frl.txt"), []byte(listText(42, 2840, 2)), 0o644))
	db := filepath.Join(t.TempDir(), "fide.db")

	out, err := run(t, "seed", "--dir", dir, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Sep 2025  40 stored")
	assert.Contains(t, out, "Oct 2025  42 stored")
	assert.Contains(t, out, "seeded 2 lists")

	ctx := context.Background()
	svc := service.New(service.WithStore("sqlite"), service.WithSQLitePath(db))
	require.NoError(t, svc.Start(ctx))
	t.Cleanup(svc.Stop)

	mux := http.NewServeMux()
	api.NewServer(svc).Register(ctx, mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	out, err = run(t, "verify", "--url", srv.URL, "--page-size", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "42 ranked players, 5 per page")
	assert.Contains(t, out, "delta_month")
	assert.Contains(t, out, "all checks passed")
}

func TestVerify_Unreachable(t *testing.T) {
	setupCLITest(t)

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := run(t, "verify", "--url", url)
	require.Error(t, err)
}

func archiveHost(t *testing.T, code string) *httptest.Server {
	t.Helper()
	var archive bytes.Buffer
	zw := zip.NewWriter(&archive)
	w, err := zw.Create("standard_" + code + "frl.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte(listText(3, 2800, 0)))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/standard_"+code+"frl.zip" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(archive.Bytes())
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDownload(t *testing.T) {
	setupCLITest(t)
	srv := archiveHost(t, "oct25")
	dir := filepath.Join(t.TempDir(), "historical_data")

	out, err := run(t, "download", "--from", "sep25", "--to", "oct25", "--dir", dir, "--base-url", srv.URL)
	require.NoError(t, err, "a missing month is reported and skipped")
	assert.Contains(t, out, "sep25  failed")
	assert.Contains(t, out, "downloaded 1 of 2 lists")
	assert.FileExists(t, filepath.Join(dir, "standard_oct25frl.txt"))
}

func TestDownload_NothingPublished(t *testing.T) {
	setupCLITest(t)
	srv := archiveHost(t, "oct25")

	_, err := run(t, "download", "--from", "nov25", "--to", "nov25", "--dir", t.TempDir(), "--base-url", srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no rating lists downloaded")
}

func TestDownload_BadMonthCode(t *testing.T) {
	setupCLITest(t)

	_, err := run(t, "download", "--from", "2025-10")
	require.Error(t, err)
}
