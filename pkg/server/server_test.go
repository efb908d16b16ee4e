package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"weixiang/pkg/battle"
	"weixiang/pkg/core"
	"weixiang/pkg/estimate"
	"weixiang/pkg/game"
	"weixiang/pkg/grid"
	"weixiang/pkg/server"
	"weixiang/pkg/weiqi"
)

type script struct {
	vals []int
	i    int
}

func (s *script) IntN(n int) int {
	v := s.vals[s.i%len(s.vals)] % n
	s.i++
	return v
}

type fixedEstimator struct {
	t   estimate.Territories
	err error
}

func (f fixedEstimator) Estimate(context.Context, estimate.Request) (estimate.Territories, error) {
	return f.t, f.err
}

type stateResponse struct {
	State   game.Update `json:"state"`
	Error   string      `json:"error"`
	Message string      `json:"message"`
}

type fixture struct {
	handler http.Handler
	session *server.Session
	results chan estimate.Result
}

func newFixture(t *testing.T, est estimate.Estimator) *fixture {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	rules := game.DefaultRules()
	rules.WinThreshold = weiqi.Size*weiqi.Size + 1
	rules.StartingTokens = 1

	results := make(chan estimate.Result, 1)
	hub := server.NewHub(nil)
	go hub.Run(ctx.Done())
	sess := server.NewSession(game.Options{Rules: rules, Source: &script{vals: []int{4, 4, 1, 4}}}, hub, results)
	go sess.Run(ctx)

	srv := server.New(server.Options{
		Session:   sess,
		Hub:       hub,
		Estimator: est,
		Alive:     func() bool { return true },
	})
	return &fixture{handler: srv.Routes(), session: sess, results: results}
}

func (f *fixture) do(t *testing.T, method, path, body string) (int, stateResponse) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	var resp stateResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body of %s %s: %v", method, path, err)
	}
	return rr.Code, resp
}

func TestStoneEndpoint(t *testing.T) {
	f := newFixture(t, nil)

	code, resp := f.do(t, http.MethodPost, "/api/stone", `{"row":3,"col":3}`)
	if code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %+v", code, resp)
	}
	if len(resp.State.Stones) != 1 || resp.State.StrategicTurn != core.White {
		t.Fatalf("unexpected state after stone: %+v", resp.State)
	}

	code, resp = f.do(t, http.MethodPost, "/api/stone", `{"row":3,"col":3}`)
	if code != http.StatusConflict || resp.Error != "occupied_cell" {
		t.Fatalf("expected occupied_cell conflict, got %d %q", code, resp.Error)
	}
	if len(resp.State.Stones) != 1 {
		t.Fatalf("rejected stone changed the board: %+v", resp.State.Stones)
	}

	code, _ = f.do(t, http.MethodPost, "/api/stone", `{"row":`)
	if code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for bad payload, got %d", code)
	}
}

func TestBattleOverHTTP(t *testing.T) {
	f := newFixture(t, nil)

	steps := []struct {
		path string
		body string
	}{
		{"/api/summon", `{"piece":"soldier"}`},
		{"/api/move", `{"from":{"row":4,"col":4},"to":{"row":5,"col":4}}`},
		{"/api/summon", `{"piece":"general"}`},
		{"/api/move", `{"from":{"row":5,"col":4},"to":{"row":6,"col":4}}`},
	}
	for _, s := range steps {
		if code, resp := f.do(t, http.MethodPost, s.path, s.body); code != http.StatusOK {
			t.Fatalf("%s %s: status %d error %q", s.path, s.body, code, resp.Error)
		}
	}

	_, resp := f.do(t, http.MethodGet, "/api/state", "")
	if resp.State.Battle.Phase != battle.FortressPending {
		t.Fatalf("unexpected phase: %s", resp.State.Battle.Phase)
	}
	if resp.State.Battle.Winner == nil || *resp.State.Battle.Winner != core.Black {
		t.Fatalf("unexpected battle winner: %+v", resp.State.Battle)
	}

	code, resp := f.do(t, http.MethodPost, "/api/fortress", `{"row":9,"col":9}`)
	if code != http.StatusOK {
		t.Fatalf("failed to place fortress: %d %q", code, resp.Error)
	}
	if resp.State.Battle.Phase != battle.Idle || len(resp.State.Pieces) != 0 {
		t.Fatalf("battle not closed: %+v", resp.State)
	}
	if s := resp.State.Stones[0]; s.Stone.Kind != weiqi.Fortress {
		t.Fatalf("expected a fortress, got %+v", s)
	}

	if code, resp = f.do(t, http.MethodPost, "/api/undo", ""); code != http.StatusOK {
		t.Fatalf("failed to undo: %d %q", code, resp.Error)
	}
	if resp.State.Battle.Phase != battle.FortressPending {
		t.Fatalf("undo should reopen the fortress placement, got %s", resp.State.Battle.Phase)
	}
	if code, resp = f.do(t, http.MethodPost, "/api/fortress/skip", ""); code != http.StatusOK {
		t.Fatalf("failed to skip fortress: %d %q", code, resp.Error)
	}
	if len(resp.State.Stones) != 0 {
		t.Fatalf("skip should leave the board empty: %+v", resp.State.Stones)
	}
}

func TestEndBattleEndpoint(t *testing.T) {
	f := newFixture(t, nil)
	code, resp := f.do(t, http.MethodPost, "/api/battle/end", "")
	if code != http.StatusConflict || resp.Error != "no_battle" {
		t.Fatalf("expected no_battle conflict, got %d %q", code, resp.Error)
	}
	if code, resp = f.do(t, http.MethodPost, "/api/summon", `{"piece":"rook"}`); code != http.StatusOK {
		t.Fatalf("failed to summon: %d %q", code, resp.Error)
	}
	code, resp = f.do(t, http.MethodPost, "/api/battle/end", "")
	if code != http.StatusOK {
		t.Fatalf("failed to end battle: %d %q", code, resp.Error)
	}
	if resp.State.Battle.Phase != battle.Idle || len(resp.State.Pieces) != 0 {
		t.Fatalf("battle not ended: %+v", resp.State)
	}
	if code, resp = f.do(t, http.MethodPost, "/api/stone", `{"row":3,"col":3}`); code != http.StatusOK {
		t.Fatalf("stone after ending the battle: %d %q", code, resp.Error)
	}
}

func TestMovesEndpoint(t *testing.T) {
	f := newFixture(t, nil)
	if code, _ := f.do(t, http.MethodPost, "/api/summon", `{"piece":"soldier"}`); code != http.StatusOK {
		t.Fatalf("failed to summon: %d", code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/moves?row=4&col=4", nil)
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	var payload struct {
		Moves []grid.Point `json:"moves"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(payload.Moves) != 1 || payload.Moves[0] != (grid.Point{Row: 5, Col: 4}) {
		t.Fatalf("unexpected soldier moves: %+v", payload.Moves)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/moves?row=x", nil)
	rr = httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestNewGameEndpoint(t *testing.T) {
	f := newFixture(t, nil)
	_, first := f.do(t, http.MethodGet, "/api/state", "")
	f.do(t, http.MethodPost, "/api/stone", `{"row":0,"col":0}`)
	code, resp := f.do(t, http.MethodPost, "/api/new", "")
	if code != http.StatusOK || resp.State.GameID == first.State.GameID || len(resp.State.Stones) != 0 {
		t.Fatalf("unexpected new game: %d %+v", code, resp.State)
	}
}

func TestEstimateAndHealth(t *testing.T) {
	f := newFixture(t, fixedEstimator{t: estimate.Territories{Black: 12, White: 7, Dame: 342}})

	req := httptest.NewRequest(http.MethodPost, estimate.EstimatePath,
		strings.NewReader(`{"boardState":{"moves":[{"player":"B","coord":"D16"}],"boardSize":19}}`))
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	var est estimate.Response
	if err := json.Unmarshal(rr.Body.Bytes(), &est); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if rr.Code != http.StatusOK || est.Territories.Black != 12 || est.Territories.Dame != 342 {
		t.Fatalf("unexpected estimate: %d %+v", rr.Code, est)
	}

	req = httptest.NewRequest(http.MethodGet, estimate.HealthPath, nil)
	rr = httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	var health estimate.Health
	if err := json.Unmarshal(rr.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if health.Status != "ok" || !health.KatagoRunning {
		t.Fatalf("unexpected health: %+v", health)
	}

	failing := newFixture(t, fixedEstimator{err: errors.New("engine down")})
	req = httptest.NewRequest(http.MethodPost, estimate.EstimatePath, strings.NewReader(`{"boardState":{"boardSize":19}}`))
	rr = httptest.NewRecorder()
	failing.handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", rr.Code)
	}
}

func TestSessionAppliesEstimates(t *testing.T) {
	f := newFixture(t, nil)
	_, resp := f.do(t, http.MethodPost, "/api/stone", `{"row":3,"col":3}`)
	epoch := resp.State.Epoch

	f.results <- estimate.Result{Epoch: epoch - 1, Territories: estimate.Territories{Black: 99}}
	f.results <- estimate.Result{Epoch: epoch, Territories: estimate.Territories{Black: 40, White: 2}}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		var got core.Tally
		if err := f.session.Do(context.Background(), func(g *game.Game) { got = g.Territory() }); err != nil {
			t.Fatalf("session closed: %v", err)
		}
		if got == (core.Tally{Black: 40, White: 2}) {
			return
		}
		if got.Black == 99 {
			t.Fatalf("stale estimate applied: %+v", got)
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("estimate never applied")
}

func TestWebsocketPushesUpdates(t *testing.T) {
	f := newFixture(t, nil)
	ts := httptest.NewServer(f.handler)
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	defer conn.Close()

	next := func() game.Update {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var msg struct {
			Type    string      `json:"type"`
			Payload game.Update `json:"payload"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read websocket: %v", err)
		}
		if msg.Type != "update" {
			t.Fatalf("unexpected message type %q", msg.Type)
		}
		return msg.Payload
	}

	if u := next(); len(u.Stones) != 0 {
		t.Fatalf("unexpected initial state: %+v", u)
	}

	resp, err := http.Post(ts.URL+"/api/stone", "application/json", strings.NewReader(`{"row":2,"col":2}`))
	if err != nil {
		t.Fatalf("post stone: %v", err)
	}
	resp.Body.Close()

	if u := next(); len(u.Stones) != 1 || u.Stones[0].Row != 2 {
		t.Fatalf("unexpected pushed update: %+v", u)
	}
}
