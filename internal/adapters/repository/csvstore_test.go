package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/racebet/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func race(game model.GameID, round int, r1, r2, r3, r4 model.CompetitorID) model.RaceResult {
	return model.RaceResult{Game: game, Round: round, Ranks: [model.Positions]model.CompetitorID{r1, r2, r3, r4}}
}

func TestCSVStore_Load(t *testing.T) {
	Convey("Given a CSV store over a missing file", t, func() {
		path := filepath.Join(t.TempDir(), "race_results.csv")
		s := NewCSVStore(path)
		ctx := context.Background()

		Convey("When loading", func() {
			table, err := s.Load(ctx)

			Convey("Then the table is empty and the header file exists", func() {
				So(err, ShouldBeNil)
				So(table.Empty(), ShouldBeTrue)
				raw, err := os.ReadFile(path)
				So(err, ShouldBeNil)
				So(string(raw), ShouldEqual, "Game,Round,1st,2nd,3rd,4th\n")
			})
		})
	})

	Convey("Given a CSV file with an empty Game cell and float cells", t, func() {
		path := filepath.Join(t.TempDir(), "race_results.csv")
		content := "Game,Round,1st,2nd,3rd,4th\n" +
			"1,1,2,4,1,3\n" +
			",2,1,2,3,4\n" +
			"2.0,1,4,3,2,1\n"
		So(os.WriteFile(path, []byte(content), 0o600), ShouldBeNil)
		s := NewCSVStore(path)

		Convey("When loading", func() {
			table, err := s.Load(context.Background())

			Convey("Then every row is parsed in order", func() {
				So(err, ShouldBeNil)
				So(table.Rows(), ShouldResemble, []model.RaceResult{
					race(1, 1, 2, 4, 1, 3),
					race(model.NoGame, 2, 1, 2, 3, 4),
					race(2, 1, 4, 3, 2, 1),
				})
			})
		})
	})

	Convey("Given a CSV file with a malformed row", t, func() {
		path := filepath.Join(t.TempDir(), "race_results.csv")
		content := "Game,Round,1st,2nd,3rd,4th\n1,1,2,4,1,3\n1,x,1,2,3,4\n"
		So(os.WriteFile(path, []byte(content), 0o600), ShouldBeNil)

		Convey("When loading", func() {
			_, err := NewCSVStore(path).Load(context.Background())

			Convey("Then the error names the line", func() {
				So(errors.Is(err, ErrMalformedRecord), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "line 3")
			})
		})
	})

	Convey("Given a CSV file with a short row", t, func() {
		path := filepath.Join(t.TempDir(), "race_results.csv")
		content := "Game,Round,1st,2nd,3rd,4th\n1,1,2,4\n"
		So(os.WriteFile(path, []byte(content), 0o600), ShouldBeNil)

		Convey("Then loading fails as malformed", func() {
			_, err := NewCSVStore(path).Load(context.Background())
			So(errors.Is(err, ErrMalformedRecord), ShouldBeTrue)
		})
	})

	Convey("Given a CSV file with a zero game number", t, func() {
		path := filepath.Join(t.TempDir(), "race_results.csv")
		content := "Game,Round,1st,2nd,3rd,4th\n,1,2,4,1,3\n0,2,1,2,3,4\n"
		So(os.WriteFile(path, []byte(content), 0o600), ShouldBeNil)

		Convey("Then loading fails instead of reading it as a row outside a game", func() {
			_, err := NewCSVStore(path).Load(context.Background())
			So(errors.Is(err, ErrMalformedRecord), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "line 3")
		})
	})

	Convey("Given a CSV file with the wrong header", t, func() {
		path := filepath.Join(t.TempDir(), "race_results.csv")
		So(os.WriteFile(path, []byte("a,b,c,d,e,f\n"), 0o600), ShouldBeNil)

		Convey("Then loading fails on line 1", func() {
			_, err := NewCSVStore(path).Load(context.Background())
			So(errors.Is(err, ErrMalformedRecord), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "line 1")
		})
	})
}

func TestCSVStore_Persist(t *testing.T) {
	Convey("Given a CSV store", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "race_results.csv")
		s := NewCSVStore(path)
		ctx := context.Background()

		table := model.NewTable(
			race(1, 1, 2, 4, 1, 3),
			race(model.NoGame, 1, 1, 2, 3, 4),
		)

		Convey("When persisting and reloading", func() {
			So(s.Persist(ctx, table), ShouldBeNil)
			loaded, err := s.Load(ctx)

			Convey("Then the rows round trip with the empty Game cell", func() {
				So(err, ShouldBeNil)
				So(loaded.Rows(), ShouldResemble, table.Rows())

				raw, err := os.ReadFile(path)
				So(err, ShouldBeNil)
				So(string(raw), ShouldEqual, "Game,Round,1st,2nd,3rd,4th\n1,1,2,4,1,3\n,1,1,2,3,4\n")
			})

			Convey("Then no temp files are left behind", func() {
				entries, err := os.ReadDir(dir)
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 1)
			})
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			Convey("Then persist refuses to write", func() {
				So(s.Persist(cctx, table), ShouldEqual, context.Canceled)
				_, err := os.Stat(path)
				So(os.IsNotExist(err), ShouldBeTrue)
			})
		})
	})
}

func TestOpen(t *testing.T) {
	Convey("Given the store factory", t, func() {
		dir := t.TempDir()

		Convey("Then csv and sqlite drivers are known", func() {
			cs, err := Open(DriverCSV, filepath.Join(dir, "r.csv"))
			So(err, ShouldBeNil)
			So(cs, ShouldHaveSameTypeAs, &CSVStore{})
			So(cs.Close(), ShouldBeNil)

			ss, err := Open(DriverSQLite, filepath.Join(dir, "r.db"))
			So(err, ShouldBeNil)
			So(ss, ShouldHaveSameTypeAs, &SQLiteStore{})
			So(ss.Close(), ShouldBeNil)
		})

		Convey("Then an unknown driver is rejected", func() {
			_, err := Open("parquet", "x")
			So(errors.Is(err, ErrUnknownDriver), ShouldBeTrue)
		})
	})
}
