package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrapeWorker(t *testing.T, m *WorkerMetrics) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	res := httptest.NewRecorder()
	m.Handler().ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("metrics scrape expected 200, got %d", res.Code)
	}
	return res.Body.String()
}

func TestObserveQueueLagRecordsDelay(t *testing.T) {
	m := NewWorkerMetrics("worker")

	m.ObserveQueueLag("worker", 1500*time.Millisecond)

	body := scrapeWorker(t, m)
	if !strings.Contains(body, `meddir_worker_queue_lag_seconds_count{service="worker"} 1`) {
		t.Fatalf("expected one queue lag observation, metrics:\n%s", body)
	}
	if !strings.Contains(body, `meddir_worker_queue_lag_seconds_sum{service="worker"} 1.5`) {
		t.Fatalf("expected queue lag sum of 1.5s, metrics:\n%s", body)
	}
}

func TestObserveQueueLagIgnoresNegativeLag(t *testing.T) {
	m := NewWorkerMetrics("worker")

	// Clock skew between submitter and worker can produce a negative delta.
	m.ObserveQueueLag("worker", -time.Second)

	body := scrapeWorker(t, m)
	if strings.Contains(body, `meddir_worker_queue_lag_seconds_count{service="worker"} 1`) {
		t.Fatalf("negative lag must not be observed, metrics:\n%s", body)
	}
}

func TestFinishQuestionCountsByStatus(t *testing.T) {
	m := NewWorkerMetrics("worker")

	m.StartQuestion()
	m.FinishQuestion("worker", 200*time.Millisecond, nil)
	m.StartQuestion()
	m.FinishQuestion("worker", 50*time.Millisecond, errors.New("pipeline down"))

	body := scrapeWorker(t, m)
	if !strings.Contains(body, `meddir_worker_question_process_total{service="worker",status="success"} 1`) {
		t.Fatalf("expected one success, metrics:\n%s", body)
	}
	if !strings.Contains(body, `meddir_worker_question_process_total{service="worker",status="error"} 1`) {
		t.Fatalf("expected one error, metrics:\n%s", body)
	}
}
