package config_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/fideboard/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with defaults", t, func() {
		ctx := context.Background()
		cfg := config.New(ctx)

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.Store, convey.ShouldEqual, "memory")
			convey.So(cfg.MinRating, convey.ShouldEqual, 2500)
			convey.So(cfg.DefaultPageSize, convey.ShouldEqual, 25)
			convey.So(cfg.ClientTimeout(), convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.Validate(ctx), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a config with several bad fields", t, func() {
		ctx := context.Background()
		cfg := config.New(ctx)
		cfg.Store = "redis"
		cfg.DefaultPageSize = 500
		cfg.APIURL = "not a url"
		cfg.LogLevel = "loud"

		err := cfg.Validate(ctx)

		convey.Convey("Then every failure is reported", func() {
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "Store failed oneof=memory sqlite")
			convey.So(err.Error(), convey.ShouldContainSubstring, "DefaultPageSize failed lte=100")
			convey.So(err.Error(), convey.ShouldContainSubstring, "APIURL failed url")
			convey.So(err.Error(), convey.ShouldContainSubstring, "LogLevel failed oneof")
		})
	})

	convey.Convey("Given the sqlite store without a path", t, func() {
		ctx := context.Background()
		cfg := config.New(ctx)
		cfg.Store = "sqlite"
		cfg.SQLitePath = ""

		convey.So(cfg.Validate(ctx), convey.ShouldNotBeNil)
		cfg.Store = "memory"
		convey.So(cfg.Validate(ctx), convey.ShouldBeNil)
	})
}
