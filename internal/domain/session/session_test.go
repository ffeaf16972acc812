package session_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/versuslab/versus/internal/domain/catalog"
	"github.com/versuslab/versus/internal/domain/matchup"
	"github.com/versuslab/versus/internal/domain/rating"
	"github.com/versuslab/versus/internal/domain/session"
	. "github.com/smartystreets/goconvey/convey"
)

func testCatalog() *catalog.Catalog {
	c, err := catalog.New([]catalog.Item{
		{ID: "x", Name: "X"},
		{ID: "y", Name: "Y"},
		{ID: "z", Name: "Z"},
	})
	if err != nil {
		panic(err)
	}
	return c
}

func newSession(opts ...session.Option) *session.Session {
	opts = append(opts, session.WithSamplerOptions(matchup.WithRand(rand.New(rand.NewSource(11)))))
	s, err := session.New(testCatalog(), opts...)
	if err != nil {
		panic(err)
	}
	return s
}

func TestNew(t *testing.T) {
	Convey("Given a catalog", t, func() {
		Convey("When creating a session with no identity", func() {
			s := newSession()

			Convey("Then an opaque actor id is issued and is the subject", func() {
				So(s.ActorID(), ShouldNotBeEmpty)
				So(s.SubjectID(), ShouldEqual, s.ActorID())
				So(s.ReadOnly(), ShouldBeFalse)
				So(s.ID(), ShouldNotBeEmpty)
			})
		})

		Convey("When viewing someone else's rankings", func() {
			s := newSession(session.WithActorID("me"), session.WithSubjectID("them"))

			Convey("Then actor and subject stay distinct", func() {
				So(s.ActorID(), ShouldEqual, "me")
				So(s.SubjectID(), ShouldEqual, "them")
				So(s.ReadOnly(), ShouldBeTrue)
			})
		})

		Convey("When the catalog cannot produce pairs", func() {
			_, err := session.New(nil)

			Convey("Then construction fails", func() {
				So(err, ShouldWrap, catalog.ErrInvalidCatalog)
			})
		})
	})
}

func TestMatchupGate(t *testing.T) {
	Convey("Given a session", t, func() {
		s := newSession()

		Convey("When voting before any matchup was generated", func() {
			err := s.TakeMatchup("x", "y")

			Convey("Then the vote is rejected", func() {
				So(err, ShouldWrap, session.ErrNoMatchup)
			})
		})

		Convey("When a matchup is outstanding", func() {
			m := s.NextMatchup()
			cur, ok := s.Current()
			So(ok, ShouldBeTrue)
			So(cur.Key(), ShouldEqual, m.Key())

			Convey("And the vote names the offered pair", func() {
				err := s.TakeMatchup(m.Right.ID, m.Left.ID)

				Convey("Then the vote is accepted once", func() {
					So(err, ShouldBeNil)
					So(s.Votes(), ShouldEqual, 1)
				})

				Convey("And a second vote against the same pair is stale", func() {
					So(err, ShouldBeNil)
					So(s.TakeMatchup(m.Left.ID, m.Right.ID), ShouldWrap, session.ErrNoMatchup)
				})
			})

			Convey("And the vote names a different pair", func() {
				var other string
				for _, id := range []string{"x", "y", "z"} {
					if id != m.Left.ID && id != m.Right.ID {
						other = id
						break
					}
				}
				err := s.TakeMatchup(m.Left.ID, other)

				Convey("Then the vote is rejected as stale", func() {
					So(err, ShouldWrap, session.ErrStaleMatchup)
					So(s.Votes(), ShouldEqual, 0)
				})
			})
		})

		Convey("When a new matchup is drawn before voting", func() {
			s.NextMatchup()
			second := s.NextMatchup()

			Convey("Then only the latest matchup is outstanding", func() {
				cur, ok := s.Current()
				So(ok, ShouldBeTrue)
				So(cur.Key(), ShouldEqual, second.Key())
			})
		})
	})
}

func TestRecordVote(t *testing.T) {
	Convey("Given a session and fresh rating maps", t, func() {
		s := newSession()
		actor := rating.Ratings{}
		global := rating.Ratings{"x": 1500, "y": 1500, "z": 1500}

		Convey("When recording a vote", func() {
			res := s.RecordVote(actor, global, "x", "y")

			Convey("Then both maps carry the Elo update", func() {
				So(res.ActorRatings["x"], ShouldEqual, 1516)
				So(res.ActorRatings["y"], ShouldEqual, 1484)
				So(res.GlobalRatings["x"], ShouldEqual, 1516)
				So(res.GlobalRatings["y"], ShouldEqual, 1484)
			})

			Convey("And the inputs are untouched", func() {
				So(len(actor), ShouldEqual, 0)
				So(global["x"], ShouldEqual, 1500)
			})

			Convey("And ranks come from the new global map", func() {
				So(res.WinnerRank, ShouldEqual, 1)
				So(res.LoserRank, ShouldEqual, 3)
				So(res.WinnerRating, ShouldEqual, 1516)
				So(res.LoserRating, ShouldEqual, 1484)
				So(res.AgreesWithMajority, ShouldBeTrue)
			})
		})

		Convey("When the vote goes against the global favorite", func() {
			global = rating.Ratings{"x": 1400, "y": 1700, "z": 1500}
			res := s.RecordVote(actor, global, "x", "y")

			Convey("Then the voter disagrees with the majority", func() {
				So(res.WinnerRank, ShouldBeGreaterThan, res.LoserRank)
				So(res.AgreesWithMajority, ShouldBeFalse)
			})
		})
	})
}

func TestIdleSince(t *testing.T) {
	Convey("Given a session", t, func() {
		s := newSession()
		now := time.Now()

		Convey("Then it is not idle immediately", func() {
			So(s.IdleSince(now, time.Minute), ShouldBeFalse)
		})

		Convey("And it is idle an hour later", func() {
			So(s.IdleSince(now.Add(time.Hour), time.Minute), ShouldBeTrue)
		})
	})
}
