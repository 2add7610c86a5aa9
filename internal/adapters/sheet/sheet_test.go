package sheet_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/heatboard/heatboard/internal/adapters/sheet"
	"github.com/heatboard/heatboard/internal/domain/model"
	"github.com/heatboard/heatboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	_ = logger.Init()
	m.Run()
}

func serveCSV(t *testing.T, body string, capture *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if capture != nil {
			*capture = r.URL.String()
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(body))
	}))
}

func TestFetch(t *testing.T) {
	Convey("Given a sheet serving submission rows", t, func() {
		ctx := context.Background()

		Convey("When the rows are well formed", func() {
			var requested string
			csv := "name,data\n" +
				"alice,\"{\"\"10000\"\": 3600000000000, \"\"20000\"\": \"\"7200000000000\"\"}\"\n" +
				"bob,\"{\"\"15000\"\": 5400000000000}\"\n"
			srv := serveCSV(t, csv, &requested)
			defer srv.Close()

			client := sheet.New(srv.URL+"/", "ahc001_a")
			set, err := client.Fetch(ctx)

			Convey("Then the set carries every user's score map", func() {
				So(err, ShouldBeNil)
				So(set, ShouldResemble, model.SubmissionSet{
					"alice": {10_000: 3_600_000_000_000, 20_000: 7_200_000_000_000},
					"bob":   {15_000: 5_400_000_000_000},
				})
			})

			Convey("And the request targets the task's two-column range", func() {
				So(requested, ShouldContainSubstring, "gviz/tq")
				So(requested, ShouldContainSubstring, "out%3Acsv")
				So(requested, ShouldContainSubstring, "ahc001_a%21A%3AB")
			})
		})

		Convey("When a row carries malformed JSON", func() {
			csv := "name,data\n" +
				"alice,\"{\"\"10000\"\": 3600000000000}\"\n" +
				"broken,not-json\n" +
				"bob,\"{\"\"15000\"\": 5400000000000}\"\n"
			srv := serveCSV(t, csv, nil)
			defer srv.Close()

			client := sheet.New(srv.URL+"/", "ahc001_a")
			set, err := client.Fetch(ctx)

			Convey("Then the bad row is skipped and the rest survive", func() {
				So(err, ShouldBeNil)
				So(len(set), ShouldEqual, 2)
				So(set, ShouldContainKey, "alice")
				So(set, ShouldContainKey, "bob")
			})
		})

		Convey("When a row carries a non-numeric score", func() {
			csv := "name,data\n" +
				"weird,\"{\"\"high\"\": 3600000000000}\"\n"
			srv := serveCSV(t, csv, nil)
			defer srv.Close()

			client := sheet.New(srv.URL+"/", "ahc001_a")
			set, err := client.Fetch(ctx)

			Convey("Then the row is rejected at the boundary", func() {
				So(err, ShouldBeNil)
				So(set, ShouldBeEmpty)
			})
		})

		Convey("When the server responds with an error status", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", http.StatusForbidden)
			}))
			defer srv.Close()

			client := sheet.New(srv.URL+"/", "ahc001_a")
			_, err := client.Fetch(ctx)

			Convey("Then a fetch error is reported", func() {
				So(errors.Is(err, sheet.ErrFetch), ShouldBeTrue)
			})
		})
	})
}
