package handler_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mtlprog/pageserve/internal/handler"
)

type HandlerTestSuite struct {
	suite.Suite
	dir       string
	indexPath string
	mux       *http.ServeMux
}

func (s *HandlerTestSuite) SetupTest() {
	s.dir = s.T().TempDir()
	s.indexPath = filepath.Join(s.dir, "index.html")

	s.mux = http.NewServeMux()
	handler.New(s.indexPath).RegisterRoutes(s.mux)
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

// Helper to write the index file
func (s *HandlerTestSuite) writeIndex(content string) {
	s.Require().NoError(os.WriteFile(s.indexPath, []byte(content), 0o644))
}

// Helper to make a request against the registered routes
func (s *HandlerTestSuite) makeRequest(method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)
	return w
}

func (s *HandlerTestSuite) TestGetIndex_ReturnsFileContent() {
	s.writeIndex("<html>Hi</html>")

	w := s.makeRequest(http.MethodGet, "/")

	s.Equal(http.StatusOK, w.Code)
	s.Equal("<html>Hi</html>", w.Body.String())
	s.True(strings.HasPrefix(w.Header().Get("Content-Type"), "text/html"))
	s.Equal("15", w.Header().Get("Content-Length"))
}

func (s *HandlerTestSuite) TestGetIndex_MissingFile() {
	w := s.makeRequest(http.MethodGet, "/")

	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlerTestSuite) TestGetIndex_DeletedBetweenRequests() {
	s.writeIndex("<html>Hi</html>")

	w := s.makeRequest(http.MethodGet, "/")
	s.Equal(http.StatusOK, w.Code)

	s.Require().NoError(os.Remove(s.indexPath))

	w = s.makeRequest(http.MethodGet, "/")
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlerTestSuite) TestGetIndex_Unreadable() {
	s.Require().NoError(os.Mkdir(s.indexPath, 0o755))

	w := s.makeRequest(http.MethodGet, "/")

	s.Equal(http.StatusInternalServerError, w.Code)
	s.NotContains(w.Body.String(), s.dir)
}

func (s *HandlerTestSuite) TestGetIndex_Idempotent() {
	s.writeIndex("<p>same</p>")

	first := s.makeRequest(http.MethodGet, "/")
	second := s.makeRequest(http.MethodGet, "/")

	s.Equal(http.StatusOK, first.Code)
	s.Equal(first.Code, second.Code)
	s.Equal(first.Body.String(), second.Body.String())
	s.Equal(first.Header(), second.Header())
}

func (s *HandlerTestSuite) TestGetIndex_ReflectsFileChanges() {
	s.writeIndex("A")
	w := s.makeRequest(http.MethodGet, "/")
	s.Equal("A", w.Body.String())

	s.writeIndex("B")
	w = s.makeRequest(http.MethodGet, "/")
	s.Equal("B", w.Body.String())
}

func (s *HandlerTestSuite) TestGetIndex_EmptyFile() {
	s.writeIndex("")

	w := s.makeRequest(http.MethodGet, "/")

	s.Equal(http.StatusOK, w.Code)
	s.Empty(w.Body.String())
	s.Equal("0", w.Header().Get("Content-Length"))
}

func (s *HandlerTestSuite) TestHeadIndex_NoBody() {
	s.writeIndex("<html>Hi</html>")

	w := s.makeRequest(http.MethodHead, "/")

	s.Equal(http.StatusOK, w.Code)
	s.Empty(w.Body.String())
	s.Equal("15", w.Header().Get("Content-Length"))
}

func (s *HandlerTestSuite) TestUnknownPath_NotFound() {
	s.writeIndex("<html>Hi</html>")

	for _, path := range []string{"/missing-path", "/index.html", "/a/"} {
		w := s.makeRequest(http.MethodGet, path)
		s.Equal(http.StatusNotFound, w.Code, path)
	}
}

func (s *HandlerTestSuite) TestPostIndex_MethodNotAllowed() {
	s.writeIndex("<html>Hi</html>")

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		w := s.makeRequest(method, "/")
		s.Equal(http.StatusMethodNotAllowed, w.Code, method)
		s.Contains(w.Header().Get("Allow"), http.MethodGet)
	}
}

func (s *HandlerTestSuite) TestGetIndex_Concurrent() {
	s.writeIndex("<html>concurrent</html>")

	var wg sync.WaitGroup
	results := make(chan *httptest.ResponseRecorder, 20)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- s.makeRequest(http.MethodGet, "/")
		}()
	}

	wg.Wait()
	close(results)

	for w := range results {
		s.Equal(http.StatusOK, w.Code)
		s.Equal("<html>concurrent</html>", w.Body.String())
	}
}

func TestGetIndex_RelativeToWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	mux := http.NewServeMux()
	handler.New("index.html").RegisterRoutes(mux)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before file exists, got %d", w.Code)
	}

	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>Hi</html>"), 0o644); err != nil {
		t.Fatal(err)
	}

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK || w.Body.String() != "<html>Hi</html>" {
		t.Fatalf("unexpected response %d %q", w.Code, w.Body.String())
	}
}
