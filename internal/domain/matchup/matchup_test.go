package matchup_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/versuslab/versus/internal/domain/catalog"
	"github.com/versuslab/versus/internal/domain/matchup"
	. "github.com/smartystreets/goconvey/convey"
)

func catalogOf(n int) *catalog.Catalog {
	items := make([]catalog.Item, n)
	for i := range items {
		items[i] = catalog.Item{ID: fmt.Sprintf("item-%02d", i), Name: fmt.Sprintf("Item %d", i)}
	}
	c, err := catalog.New(items)
	if err != nil {
		panic(err)
	}
	return c
}

func TestNew(t *testing.T) {
	Convey("Given catalogs of various sizes", t, func() {
		Convey("When the catalog has at least two items", func() {
			s, err := matchup.New(catalogOf(2))

			Convey("Then construction succeeds", func() {
				So(err, ShouldBeNil)
				So(s, ShouldNotBeNil)
				So(s.EpochSize(), ShouldEqual, 1)
			})
		})

		Convey("When the catalog is nil", func() {
			_, err := matchup.New(nil)

			Convey("Then construction fails with ErrInvalidCatalog", func() {
				So(err, ShouldWrap, catalog.ErrInvalidCatalog)
			})
		})
	})
}

func TestNext(t *testing.T) {
	Convey("Given a sampler over a small catalog", t, func() {
		cat := catalogOf(5)
		s, err := matchup.New(cat, matchup.WithRand(rand.New(rand.NewSource(1))))
		So(err, ShouldBeNil)

		Convey("When drawing a matchup", func() {
			m := s.Next()

			Convey("Then the two items are distinct catalog members", func() {
				So(m.Left.ID, ShouldNotEqual, m.Right.ID)
				So(cat.Contains(m.Left.ID), ShouldBeTrue)
				So(cat.Contains(m.Right.ID), ShouldBeTrue)
			})

			Convey("And the pair matches itself in either order", func() {
				So(m.Contains(m.Left.ID, m.Right.ID), ShouldBeTrue)
				So(m.Contains(m.Right.ID, m.Left.ID), ShouldBeTrue)
				So(m.Contains(m.Left.ID, "other"), ShouldBeFalse)
			})
		})

		Convey("When drawing a full epoch", func() {
			total := cat.Pairs()
			keys := make(map[string]int)
			for i := 0; i < total; i++ {
				keys[s.Next().Key()]++
			}

			Convey("Then every unordered pair appears exactly once", func() {
				So(len(keys), ShouldEqual, total)
				for _, count := range keys {
					So(count, ShouldEqual, 1)
				}
			})

			Convey("And the epoch is exhausted", func() {
				So(s.Remaining(), ShouldEqual, 0)
			})

			Convey("And the next draw resets the epoch without failing", func() {
				m := s.Next()
				So(m.Left.ID, ShouldNotEqual, m.Right.ID)
				So(s.Epochs(), ShouldEqual, 1)
				So(s.Remaining(), ShouldEqual, total-1)
			})
		})
	})
}

func TestResetHook(t *testing.T) {
	Convey("Given a sampler with a reset hook", t, func() {
		cat := catalogOf(3)
		resets := 0
		s, err := matchup.New(cat,
			matchup.WithRand(rand.New(rand.NewSource(7))),
			matchup.WithResetHook(func() { resets++ }),
		)
		So(err, ShouldBeNil)

		Convey("When drawing two full epochs", func() {
			for i := 0; i < 2*cat.Pairs(); i++ {
				s.Next()
			}

			Convey("Then the hook fired once per reset", func() {
				So(resets, ShouldEqual, 1)
				So(s.Epochs(), ShouldEqual, 1)
			})
		})
	})
}

func TestNextMinimalCatalog(t *testing.T) {
	Convey("Given a two-item catalog", t, func() {
		s, err := matchup.New(catalogOf(2), matchup.WithRand(rand.New(rand.NewSource(3))))
		So(err, ShouldBeNil)

		Convey("When drawing repeatedly", func() {
			first := s.Next()
			second := s.Next()
			third := s.Next()

			Convey("Then the single pair cycles through epochs", func() {
				So(first.Key(), ShouldEqual, second.Key())
				So(second.Key(), ShouldEqual, third.Key())
				So(s.Epochs(), ShouldEqual, 2)
			})
		})
	})
}
