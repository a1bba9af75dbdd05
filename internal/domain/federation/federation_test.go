package federation_test

import (
	"testing"

	"github.com/okian/fideboard/internal/domain/federation"
	. "github.com/smartystreets/goconvey/convey"
)

func TestResolve(t *testing.T) {
	Convey("Given FIDE federation codes", t, func() {
		Convey("When the code maps to a country", func() {
			m := federation.Resolve("NOR")

			Convey("Then the regional indicator flag is returned", func() {
				So(m.Resolved, ShouldBeTrue)
				So(m.Text, ShouldEqual, "🇳🇴")
				So(m.Code, ShouldEqual, "NOR")
			})
		})

		Convey("When the code differs from the ISO code", func() {
			So(federation.Resolve("GER").Text, ShouldEqual, "🇩🇪")
			So(federation.Resolve(" ned ").Text, ShouldEqual, "🇳🇱")
			iso, ok := federation.ISO("SUI")
			So(ok, ShouldBeTrue)
			So(iso, ShouldEqual, "CH")
		})

		Convey("When the code is a home nation", func() {
			m := federation.Resolve("ENG")
			So(m.Resolved, ShouldBeTrue)
			So(m.Text, ShouldStartWith, "🏴")
		})

		Convey("When the code cannot be resolved", func() {
			for _, code := range []string{"FID", "XYZ", ""} {
				m := federation.Resolve(code)

				So(m.Resolved, ShouldBeFalse)
				So(m.Text, ShouldEqual, code)
			}
		})
	})
}
