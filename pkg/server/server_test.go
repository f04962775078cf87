package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/catqa/catqa/pkg/config"
)

const sampleCSV = `product_id,description,category
P001,Industrial precision widget with steel housing,EL
P002,Heavy-duty automotive assembly module,AU
P003,Premium composite component for aerospace use,AE
P004,Standard consumer device in plastic case,CO
P005,Commercial medical unit with titanium frame,ME
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	s := NewServer(cfg)
	s.tempDir = t.TempDir()
	return s
}

func uploadCSV(t *testing.T, s *Server, body string) string {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "catalog.csv")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte(body)); err != nil {
		t.Fatal(err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("upload status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		JobID string `json:"job_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.JobID == "" {
		t.Fatal("upload returned no job_id")
	}
	return resp.JobID
}

func startAnalysis(t *testing.T, s *Server, jobID string) {
	t.Helper()
	body := fmt.Sprintf(`{"job_id":%q}`, jobID)
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("analyze status = %d: %s", rec.Code, rec.Body.String())
	}
}

func waitForStatus(t *testing.T, s *Server, jobID, want string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		req := httptest.NewRequest(http.MethodGet, "/api/jobs/"+jobID, nil)
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("job status = %d: %s", rec.Code, rec.Body.String())
		}

		var job map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &job); err != nil {
			t.Fatal(err)
		}
		status := job["status"].(string)
		if status == want {
			return job
		}
		if status == StatusFailed && want != StatusFailed {
			t.Fatalf("job failed: %v (%v)", job["error"], job["error_code"])
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("job %s never reached status %q", jobID, want)
	return nil
}

func TestUploadAnalyzeReport(t *testing.T) {
	s := newTestServer(t)

	jobID := uploadCSV(t, s, sampleCSV)
	startAnalysis(t, s, jobID)
	waitForStatus(t, s, jobID, StatusCompleted)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/"+jobID, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("report status = %d: %s", rec.Code, rec.Body.String())
	}
	var report map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	for _, key := range []string{"dataset_info", "completeness", "overall", "critical_issues"} {
		if _, ok := report[key]; !ok {
			t.Errorf("report missing key %q", key)
		}
	}
}

func TestReportCSVFormat(t *testing.T) {
	s := newTestServer(t)

	jobID := uploadCSV(t, s, sampleCSV)
	startAnalysis(t, s, jobID)
	waitForStatus(t, s, jobID, StatusCompleted)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/"+jobID+"?format=csv", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("report status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("content type = %q", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "section,metric,value") {
		t.Errorf("CSV body should start with header, got %q", rec.Body.String()[:40])
	}
}

func TestAnalysisFailureIsReported(t *testing.T) {
	s := newTestServer(t)

	// Header only, zero data rows.
	jobID := uploadCSV(t, s, "product_id,description,category\n")
	startAnalysis(t, s, jobID)
	job := waitForStatus(t, s, jobID, StatusFailed)

	if code := job["error_code"]; code != "E104" {
		t.Errorf("error_code = %v, want E104 (empty dataset)", code)
	}

	// Report is not available for failed jobs.
	req := httptest.NewRequest(http.MethodGet, "/api/reports/"+jobID, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("report status = %d, want 409", rec.Code)
	}
}

func TestJobNotFound(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/jobs/nope", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("body = %q", rec.Body.String())
	}
}
