package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/versuslab/versus/internal/adapters/http/api"
	"github.com/versuslab/versus/internal/adapters/repository"
	service "github.com/versuslab/versus/internal/app"
	"github.com/versuslab/versus/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := service.New(
		service.WithStore(repository.NewMemStore()),
		service.WithWorkerCount(1),
	)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)

	mux := http.NewServeMux()
	api.NewServer(svc).Register(context.Background(), mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp, decodeJSON(t, resp)
}

func getJSON(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	return resp, decodeJSON(t, resp)
}

func decodeJSON(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

// personalRating reads the subject's current rating for one item.
func personalRating(t *testing.T, ts *httptest.Server, sessionID, itemID string) float64 {
	t.Helper()
	resp, body := getJSON(t, ts.URL+"/rankings/personal?session="+sessionID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("personal rankings: status %d", resp.StatusCode)
	}
	for _, row := range body["rankings"].([]any) {
		m := row.(map[string]any)
		if m["item"].(map[string]any)["id"] == itemID {
			return m["rating"].(float64)
		}
	}
	t.Fatalf("item %s missing from personal ranking", itemID)
	return 0
}

func openSession(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	resp, body := postJSON(t, ts.URL+"/sessions", map[string]any{})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create session: status %d", resp.StatusCode)
	}
	return body["session_id"].(string)
}

func drawMatchup(t *testing.T, ts *httptest.Server, sessionID string) (left, right string) {
	t.Helper()
	resp, body := getJSON(t, ts.URL+"/matchup?session="+sessionID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("draw matchup: status %d", resp.StatusCode)
	}
	left = body["left"].(map[string]any)["id"].(string)
	right = body["right"].(map[string]any)["id"].(string)
	return left, right
}

func TestSessionsEndpoint(t *testing.T) {
	Convey("Given the API server", t, func() {
		ts := newTestServer(t)

		Convey("When opening a session with an empty body", func() {
			resp, err := http.Post(ts.URL+"/sessions", "application/json", strings.NewReader(""))
			So(err, ShouldBeNil)
			body := decodeJSON(t, resp)

			Convey("Then a self-owned session is created", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusCreated)
				So(body["session_id"], ShouldNotBeEmpty)
				So(body["actor_id"], ShouldEqual, body["subject_id"])
				So(body["read_only"], ShouldBeFalse)
			})
		})

		Convey("When opening a session from a share link", func() {
			resp, body := postJSON(t, ts.URL+"/sessions", map[string]any{"subject_id": "someone-else"})

			Convey("Then the session views the shared identity read-only", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusCreated)
				So(body["subject_id"], ShouldEqual, "someone-else")
				So(body["actor_id"], ShouldNotEqual, "someone-else")
				So(body["read_only"], ShouldBeTrue)
			})
		})

		Convey("When using the wrong method", func() {
			resp, err := http.Get(ts.URL + "/sessions")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the route is not found", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestMatchupEndpoint(t *testing.T) {
	Convey("Given the API server with a session", t, func() {
		ts := newTestServer(t)
		sessionID := openSession(t, ts)

		Convey("When requesting a matchup", func() {
			resp, body := getJSON(t, ts.URL+"/matchup?session="+sessionID)

			Convey("Then two distinct items are offered", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(body["session_id"], ShouldEqual, sessionID)
				left := body["left"].(map[string]any)["id"]
				right := body["right"].(map[string]any)["id"]
				So(left, ShouldNotBeEmpty)
				So(right, ShouldNotBeEmpty)
				So(left, ShouldNotEqual, right)
			})
		})

		Convey("When the session parameter is missing", func() {
			resp, _ := getJSON(t, ts.URL+"/matchup")

			Convey("Then the request is rejected", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the session is unknown", func() {
			resp, _ := getJSON(t, ts.URL+"/matchup?session=ghost")

			Convey("Then it is not found", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestVotesEndpoint(t *testing.T) {
	Convey("Given the API server with an outstanding matchup", t, func() {
		ts := newTestServer(t)
		sessionID := openSession(t, ts)
		left, right := drawMatchup(t, ts, sessionID)

		vote := map[string]any{
			"session_id": sessionID,
			"winner_id":  left,
			"loser_id":   right,
		}

		Convey("When voting for the left item", func() {
			resp, body := postJSON(t, ts.URL+"/votes", vote)

			Convey("Then the vote is applied and rated", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(body["winner_id"], ShouldEqual, left)
				So(body["winner_rating"], ShouldEqual, 1516)
				So(body["loser_rating"], ShouldEqual, 1484)
				So(body["total_votes"], ShouldEqual, 1)
				So(body["agrees_with_majority"], ShouldBeTrue)
			})

			Convey("And replaying the same vote hits the matchup gate", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				resp, body := postJSON(t, ts.URL+"/votes", vote)
				So(resp.StatusCode, ShouldEqual, http.StatusConflict)
				So(body["code"], ShouldEqual, "stale_matchup")
			})
		})

		Convey("When the body is incomplete", func() {
			resp, body := postJSON(t, ts.URL+"/votes", map[string]any{"session_id": sessionID})

			Convey("Then it is a bad request", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
				So(body["code"], ShouldEqual, "bad_request")
			})
		})

		Convey("When the session is unknown", func() {
			resp, body := postJSON(t, ts.URL+"/votes", map[string]any{
				"session_id": "ghost", "winner_id": left, "loser_id": right,
			})

			Convey("Then it is not found", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
				So(body["code"], ShouldEqual, "unknown_session")
			})
		})

		Convey("When the winner is not in the catalog", func() {
			resp, body := postJSON(t, ts.URL+"/votes", map[string]any{
				"session_id": sessionID, "winner_id": "not-an-album", "loser_id": right,
			})

			Convey("Then it is not found", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
				So(body["code"], ShouldEqual, "unknown_item")
			})
		})
	})
}

func TestRankingsEndpoints(t *testing.T) {
	Convey("Given the API server with a few votes cast", t, func() {
		ts := newTestServer(t)
		sessionID := openSession(t, ts)
		for i := 0; i < 3; i++ {
			left, right := drawMatchup(t, ts, sessionID)
			resp, _ := postJSON(t, ts.URL+"/votes", map[string]any{
				"session_id": sessionID, "winner_id": left, "loser_id": right,
			})
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
		}

		Convey("When reading the global ranking", func() {
			resp, body := getJSON(t, ts.URL+"/rankings/global")

			Convey("Then every item appears with a dense rank", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(body["total_votes"], ShouldEqual, 3)
				rankings := body["rankings"].([]any)
				So(len(rankings), ShouldEqual, 12)
				first := rankings[0].(map[string]any)
				So(first["rank"], ShouldEqual, 1)
			})
		})

		Convey("When limiting the global ranking", func() {
			resp, body := getJSON(t, ts.URL+"/rankings/global?limit=3")

			Convey("Then only the top rows return", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(len(body["rankings"].([]any)), ShouldEqual, 3)
			})
		})

		Convey("When the limit is not a positive integer", func() {
			resp, _ := getJSON(t, ts.URL+"/rankings/global?limit=abc")

			Convey("Then it is a bad request", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When reading the personal ranking", func() {
			resp, body := getJSON(t, ts.URL+"/rankings/personal?session="+sessionID)

			Convey("Then the voter's private ranking returns", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(body["session_id"], ShouldEqual, sessionID)
				So(len(body["rankings"].([]any)), ShouldEqual, 12)
			})
		})

		Convey("When the personal session is unknown", func() {
			resp, _ := getJSON(t, ts.URL+"/rankings/personal?session=ghost")

			Convey("Then it is not found", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestCatalogStatsAndHealth(t *testing.T) {
	Convey("Given the API server", t, func() {
		ts := newTestServer(t)

		Convey("When reading the catalog", func() {
			resp, body := getJSON(t, ts.URL+"/catalog")

			Convey("Then all items return in catalog order", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				items := body["items"].([]any)
				So(len(items), ShouldEqual, 12)
				So(items[0].(map[string]any)["id"], ShouldEqual, "taylor-swift")
			})
		})

		Convey("When reading stats", func() {
			resp, body := getJSON(t, ts.URL+"/stats")

			Convey("Then the service state is visible", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(body["started"], ShouldBeTrue)
				So(body["catalog_size"], ShouldEqual, 12)
			})
		})

		Convey("When scraping health", func() {
			resp, err := http.Get(ts.URL + "/healthz")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			payload, err := io.ReadAll(resp.Body)

			Convey("Then Prometheus metrics are served", func() {
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(string(payload), ShouldContainSubstring, "versus_ranking_")
			})
		})
	})
}

func TestRepeatedWinsKeepClimbing(t *testing.T) {
	Convey("Given a fresh server", t, func() {
		ts := newTestServer(t)
		sessionID := openSession(t, ts)

		Convey("When every matchup is decided in the left item's favor", func() {
			for i := 0; i < 20; i++ {
				left, right := drawMatchup(t, ts, sessionID)
				before := personalRating(t, ts, sessionID, left)

				resp, body := postJSON(t, ts.URL+"/votes", map[string]any{
					"session_id": sessionID, "winner_id": left, "loser_id": right,
				})
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(body["winner_rating"].(float64), ShouldBeGreaterThan, before)
			}
		})
	})
}
