package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"pyjs/pkg/codegen"
)

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	if opts.CacheSize == 0 {
		opts.CacheSize = 16
	}
	ts := httptest.NewServer(New(opts).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, body, bearer string) (*http.Response, Response) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var out Response
	if resp.Header.Get("Content-Type") == "application/json" && resp.StatusCode != http.StatusUnauthorized {
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp, out
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Status string `json:"status"`
		Cache  struct {
			Entries int `json:"entries"`
		} `json:"cache"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" {
		t.Fatalf("unexpected status %q", body.Status)
	}
}

func TestTranspileEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		body     string
		status   int
		output   string
		stage    string
		errLine  int
		errorMsg string
	}{
		{
			name:   "success",
			path:   "/transpile",
			body:   "x = 2 ** 3\nprint(x)\n",
			status: http.StatusOK,
			output: "let x = Math.pow(2, 3);\nconsole.log(x);",
		},
		{
			name:   "nested policy",
			path:   "/transpile?policy=nested",
			body:   "while a:\n    if b:\n        print(1)\n",
			status: http.StatusOK,
			output: "while (a) {\n    if (b) {\n        console.log(1);\n    }\n}",
		},
		{
			name:   "flat policy",
			path:   "/transpile?policy=flat",
			body:   "while a:\n    if b:\n        print(1)\n",
			status: http.StatusOK,
			output: "while (a) {\n    if (b) {\n    console.log(1);\n}\n}",
		},
		{
			name:     "parse error",
			path:     "/transpile",
			body:     "x = 1\ny = a and b\n",
			status:   http.StatusUnprocessableEntity,
			stage:    "parse",
			errLine:  2,
			errorMsg: "boolean operator 'and'",
		},
		{
			name:     "lex error",
			path:     "/transpile",
			body:     "x = $\n",
			status:   http.StatusUnprocessableEntity,
			stage:    "lex",
			errLine:  1,
			errorMsg: "unexpected character",
		},
	}

	ts := newTestServer(t, Options{})

	for _, tt := range tests {
		resp, out := post(t, ts.URL+tt.path, tt.body, "")
		if resp.StatusCode != tt.status {
			t.Errorf("%s: expected status %d, got %d", tt.name, tt.status, resp.StatusCode)
			continue
		}
		if tt.output != "" {
			if out.Output == nil || *out.Output != tt.output {
				t.Errorf("%s: output wrong. got=%+v", tt.name, out)
			}
			if out.Error != nil {
				t.Errorf("%s: unexpected error %+v", tt.name, out.Error)
			}
			continue
		}
		if out.Output != nil {
			t.Errorf("%s: failed request has output %q", tt.name, *out.Output)
		}
		if out.Error == nil {
			t.Fatalf("%s: missing error", tt.name)
		}
		if out.Error.Stage != tt.stage || out.Error.Line != tt.errLine || !strings.Contains(out.Error.Message, tt.errorMsg) {
			t.Errorf("%s: error wrong: %+v", tt.name, out.Error)
		}
	}
}

func TestTranspileBadPolicy(t *testing.T) {
	ts := newTestServer(t, Options{})
	resp, err := http.Post(ts.URL+"/transpile?policy=deep", "text/plain", strings.NewReader("x = 1"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestTranspileTooLarge(t *testing.T) {
	h := New(Options{}).Handler()
	body := strings.Repeat("x = 1\n", MaxSourceBytes/6+10)
	req := httptest.NewRequest(http.MethodPost, "/transpile", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
}

func TestWrongMethod(t *testing.T) {
	ts := newTestServer(t, Options{})
	resp, err := http.Get(ts.URL + "/transpile")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}

func TestCachesSuccessfulResults(t *testing.T) {
	s := New(Options{CacheSize: 8})
	src := "print(1)\n"

	first := s.transpile(codegen.Flat, src)
	second := s.transpile(codegen.Flat, src)
	if first.Output == nil || second.Output == nil || *first.Output != *second.Output {
		t.Fatalf("unexpected responses: %+v %+v", first, second)
	}
	s.transpile(codegen.Nested, src)
	s.transpile(codegen.Flat, "pass\n")

	stats := s.CacheStats()
	if stats.Entries != 2 {
		t.Errorf("expected 2 cached entries (one per policy), got %d", stats.Entries)
	}
	if stats.Hits != 1 {
		t.Errorf("expected 1 hit, got %d", stats.Hits)
	}
}

func TestAuth(t *testing.T) {
	const secret = "test-secret"
	ts := newTestServer(t, Options{JWTSecret: secret})

	resp, _ := post(t, ts.URL+"/transpile", "print(1)", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}
	if resp.Header.Get("WWW-Authenticate") == "" {
		t.Error("missing WWW-Authenticate header")
	}

	resp, _ = post(t, ts.URL+"/transpile", "print(1)", "not-a-jwt")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 with garbage token, got %d", resp.StatusCode)
	}

	wrong, err := SignToken("other-secret", "alice", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	resp, _ = post(t, ts.URL+"/transpile", "print(1)", wrong)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrongly signed token, got %d", resp.StatusCode)
	}

	good, err := SignToken(secret, "alice", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	resp, out := post(t, ts.URL+"/transpile", "print(1)", good)
	if resp.StatusCode != http.StatusOK || out.Output == nil || *out.Output != "console.log(1);" {
		t.Fatalf("expected success with valid token, got %d %+v", resp.StatusCode, out)
	}

	// Health stays open
	hresp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	hresp.Body.Close()
	if hresp.StatusCode != http.StatusOK {
		t.Fatalf("healthz should not require auth, got %d", hresp.StatusCode)
	}
}

func TestTokens(t *testing.T) {
	tok, err := SignToken("k", "bob", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	subject, err := VerifyToken(tok, "k")
	if err != nil || subject != "bob" {
		t.Fatalf("VerifyToken = %q, %v", subject, err)
	}

	expired, err := SignToken("k", "bob", -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := VerifyToken(expired, "k"); err == nil {
		t.Fatal("expired token accepted")
	}

	if _, err := SignToken("", "bob", time.Minute); err == nil {
		t.Fatal("empty secret accepted")
	}
}

func TestRequestToken(t *testing.T) {
	tests := []struct {
		header     string
		query      string
		allowQuery bool
		expected   string
		wantErr    bool
	}{
		{header: "Bearer abc", expected: "abc"},
		{header: "bearer  abc ", expected: "abc"},
		{header: "Basic abc", wantErr: true},
		{header: "Bearer", wantErr: true},
		{query: "xyz", allowQuery: true, expected: "xyz"},
		{query: "xyz", allowQuery: false, wantErr: true},
		{wantErr: true},
	}

	for i, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/ws?token="+tt.query, nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		got, err := requestToken(r, tt.allowQuery)
		if (err != nil) != tt.wantErr {
			t.Errorf("tests[%d] - error = %v, wantErr %v", i, err, tt.wantErr)
			continue
		}
		if got != tt.expected {
			t.Errorf("tests[%d] - token = %q, want %q", i, got, tt.expected)
		}
	}
}

func dial(t *testing.T, ts *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + path
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		t.Fatalf("dial %s: %v (status %d)", path, err, status)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocket(t *testing.T) {
	ts := newTestServer(t, Options{})
	conn := dial(t, ts, "/ws?policy=nested")

	exchange := func(src string) Response {
		t.Helper()
		if err := conn.WriteMessage(websocket.TextMessage, []byte(src)); err != nil {
			t.Fatal(err)
		}
		var resp Response
		if err := conn.ReadJSON(&resp); err != nil {
			t.Fatal(err)
		}
		return resp
	}

	resp := exchange("for i in range(2):\n    print(i)\n")
	if resp.Output == nil || *resp.Output != "for (let i = 0; i < 2; i++) {\n    console.log(i);\n}" {
		t.Fatalf("unexpected reply: %+v", resp)
	}

	// The session survives a failing program
	resp = exchange("import os\n")
	if resp.Error == nil || resp.Error.Stage != "parse" {
		t.Fatalf("expected parse error, got %+v", resp)
	}

	resp = exchange("x = 1\n")
	if resp.Output == nil || *resp.Output != "let x = 1;" {
		t.Fatalf("unexpected reply after error: %+v", resp)
	}
}

func TestWebSocketAuth(t *testing.T) {
	const secret = "ws-secret"
	ts := newTestServer(t, Options{JWTSecret: secret})
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected handshake to fail without a token")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", resp)
	}

	tok, err := SignToken(secret, "carol", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	conn := dial(t, ts, "/ws?token="+tok)
	if err := conn.WriteMessage(websocket.TextMessage, []byte("print(2)")); err != nil {
		t.Fatal(err)
	}
	var reply Response
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatal(err)
	}
	if reply.Output == nil || *reply.Output != "console.log(2);" {
		t.Fatalf("unexpected reply: %+v", reply)
	}
}
