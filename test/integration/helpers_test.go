package integration_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/onsi/gomega/gexec"

	"github.com/kardolus/agentic/test"
	"github.com/kardolus/agentic/types"
)

const expectedToken = "valid-api-key"

var (
	onceBuild  sync.Once
	binaryPath string
)

func buildBinary() error {
	var err error
	onceBuild.Do(func() {
		binaryPath, err = gexec.Build(
			"github.com/kardolus/agentic/cmd/agentic",
			"-ldflags",
			fmt.Sprintf("-X main.GitCommit=%s -X main.GitVersion=%s", gitCommit, gitVersion))
	})
	return err
}

// mockLLM serves scripted chat completions, one reply per request. Once the
// script runs out the last reply is repeated.
type mockLLM struct {
	*httptest.Server
	requests atomic.Int32
	replies  []string
}

func newMockLLM(completionsPath string, replies []string) *mockLLM {
	m := &mockLLM{replies: replies}

	mux := http.NewServeMux()
	mux.HandleFunc(completionsPath, m.postCompletions)
	m.Server = httptest.NewServer(mux)

	return m
}

func (m *mockLLM) postCompletions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if err := checkBearerToken(r, expectedToken); err != nil {
		data, _ := test.FileToBytes("error.json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write(data)
		return
	}

	n := int(m.requests.Add(1))
	if n > len(m.replies) {
		n = len(m.replies)
	}

	var resp types.CompletionsResponse
	resp.ID = fmt.Sprintf("chatcmpl-%d", n)
	resp.Object = "chat.completion"
	resp.Model = "gpt-4o-mini"
	resp.Usage.TotalTokens = 100
	resp.Choices = []types.Choice{{
		Message:      types.Message{Role: "assistant", Content: m.replies[n-1]},
		FinishReason: "stop",
	}}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func checkBearerToken(r *http.Request, expectedToken string) error {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return fmt.Errorf("missing Authorization header")
	}

	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok {
		return fmt.Errorf("malformed Authorization header")
	}

	if token != expectedToken {
		return fmt.Errorf("invalid token")
	}

	return nil
}
