package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryanbrs/packklite-sub001/internal/common"
	"github.com/aryanbrs/packklite-sub001/internal/events"
	"github.com/aryanbrs/packklite-sub001/internal/obs"
	"github.com/aryanbrs/packklite-sub001/internal/resilience"
)

type recordingQueue struct {
	msgs []common.EmailMessage
	err  error
}

func (q *recordingQueue) Enqueue(_ context.Context, msg common.EmailMessage) error {
	q.msgs = append(q.msgs, msg)
	return q.err
}

func emit(t *testing.T, n EmailNotifier, topic string, payload any) error {
	t.Helper()
	bus := &events.Bus{Notifiers: []events.Notifier{n}}
	_, err := bus.Emit(context.Background(), topic, uuid.New(), payload)
	return err
}

func TestOrderCreatedSendsCustomerAndAdminEmails(t *testing.T) {
	q := &recordingQueue{}
	n := EmailNotifier{Queue: q, AdminTo: "ops@packklite.test", Log: zerolog.Nop()}

	err := emit(t, n, events.TopicOrderCreated, events.OrderCreated{
		OrderNumber:  "PK-20260301-7K3M9Q",
		ContactName:  "Ana <script>",
		ContactEmail: "ana@example.com",
		Lines:        []events.OrderLine{{SKU: "BOX-S", ProductName: "Mailer box", SizeLabel: "Small", Quantity: 250, UnitPrice: "12.50", LineTotal: "3125.00"}},
		Subtotal:     "3125.00",
		Discount:     "78.13",
		Total:        "3046.88",
	})
	require.NoError(t, err)
	require.Len(t, q.msgs, 2)

	customer := q.msgs[0]
	require.Equal(t, "ana@example.com", customer.To)
	require.Equal(t, events.TopicOrderCreated, customer.Tag)
	require.Contains(t, customer.Subject, "PK-20260301-7K3M9Q")
	require.Contains(t, customer.HTML, "3046.88")
	require.Contains(t, customer.HTML, "Ana &lt;script&gt;")
	require.NotContains(t, customer.HTML, "<script>")

	require.Equal(t, "ops@packklite.test", q.msgs[1].To)
	require.Contains(t, q.msgs[1].HTML, "Mailer box")
}

func TestStatusChangeEmailsCustomerOnly(t *testing.T) {
	q := &recordingQueue{}
	n := EmailNotifier{Queue: q, AdminTo: "ops@packklite.test"}

	err := emit(t, n, events.TopicOrderStatusChanged, events.OrderStatusChanged{
		OrderNumber: "PK-20260301-7K3M9Q", ContactName: "Ana", ContactEmail: "ana@example.com", From: "CONFIRMED", To: "SHIPPED",
	})
	require.NoError(t, err)
	require.Len(t, q.msgs, 1)
	require.Equal(t, "Order PK-20260301-7K3M9Q is now Shipped", q.msgs[0].Subject)
}

func TestQuoteCreatedSkipsMissingAdminRecipient(t *testing.T) {
	q := &recordingQueue{}
	n := EmailNotifier{Queue: q}

	err := emit(t, n, events.TopicQuoteCreated, events.QuoteCreated{
		Reference: "QR-20260301-AB12CD", Name: "Bo", Email: "bo@example.com", ProductInterest: "Poly mailers", Message: "Need 5k",
	})
	require.NoError(t, err)
	require.Len(t, q.msgs, 1)
	require.Equal(t, "bo@example.com", q.msgs[0].To)
}

func TestNotifierReportsQueueFailure(t *testing.T) {
	q := &recordingQueue{err: errors.New("redis down")}
	n := EmailNotifier{Queue: q}
	err := emit(t, n, events.TopicQuoteCreated, events.QuoteCreated{Reference: "QR-1", Email: "bo@example.com"})
	require.ErrorContains(t, err, "redis down")
}

func TestAPISenderPostsWithBearerAndRetries5xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key-123", r.Header.Get("Authorization"))
		var body apiRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"ana@example.com"}, body.To)
		assert.Equal(t, "orders@packklite.test", body.From)
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	metrics := obs.NewDomainMetrics("test", reg)
	sender := APISender{
		Endpoint: srv.URL,
		APIKey:   "key-123",
		From:     "orders@packklite.test",
		Metrics:  metrics,
		HTTP:     resilience.HTTPClient{Client: srv.Client(), MaxAttempts: 3, BaseBackoff: time.Millisecond},
	}
	err := sender.Send(context.Background(), common.EmailMessage{To: "ana@example.com", Subject: "hi", HTML: "<p>hi</p>", Tag: "order.created"})
	require.NoError(t, err)
	require.EqualValues(t, 2, calls.Load())
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.EmailsSent.WithLabelValues("order.created", "sent")))
}

func TestAPISenderReturnsRejectedOn4xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "invalid recipient", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	metrics := obs.NewDomainMetrics("test", reg)
	sender := APISender{Endpoint: srv.URL, Metrics: metrics, HTTP: resilience.HTTPClient{Client: srv.Client(), MaxAttempts: 3}}
	err := sender.Send(context.Background(), common.EmailMessage{To: "x", Tag: "quote.created"})

	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	require.Equal(t, http.StatusUnprocessableEntity, rejected.StatusCode)
	require.EqualValues(t, 1, calls.Load())
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.EmailsSent.WithLabelValues("quote.created", "failed")))
}

func TestNewSenderFallsBackToLogger(t *testing.T) {
	require.IsType(t, LogSender{}, NewSender(SenderConfig{}))
	require.IsType(t, APISender{}, NewSender(SenderConfig{APIURL: "https://mail.example.com/send"}))
}

type fakeTaskClient struct {
	tasks []*asynq.Task
}

func (c *fakeTaskClient) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	c.tasks = append(c.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func TestAsynqEnqueuerAndTaskHandlerRoundTrip(t *testing.T) {
	client := &fakeTaskClient{}
	q := AsynqEnqueuer{Client: client}
	msg := common.EmailMessage{To: "ana@example.com", Subject: "hi", HTML: "<p>hi</p>", Tag: "order.created"}
	require.NoError(t, q.Enqueue(context.Background(), msg))
	require.Len(t, client.tasks, 1)
	require.Equal(t, TaskEmailSend, client.tasks[0].Type())

	outbox := &common.InMemoryEmail{}
	h := EmailTaskHandler{Sender: outbox}
	require.NoError(t, h.ProcessTask(context.Background(), client.tasks[0]))
	require.Equal(t, []common.EmailMessage{msg}, outbox.Messages())
}

type rejectingSender struct{ status int }

func (s rejectingSender) Send(context.Context, common.EmailMessage) error {
	return &RejectedError{StatusCode: s.status}
}

func TestTaskHandlerSkipsRetryOnRejection(t *testing.T) {
	task, err := NewEmailTask(common.EmailMessage{To: "ana@example.com"})
	require.NoError(t, err)

	err = EmailTaskHandler{Sender: rejectingSender{status: http.StatusBadRequest}}.ProcessTask(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)

	err = EmailTaskHandler{Sender: rejectingSender{status: http.StatusTooManyRequests}}.ProcessTask(context.Background(), task)
	require.Error(t, err)
	require.NotErrorIs(t, err, asynq.SkipRetry)

	bad := asynq.NewTask(TaskEmailSend, []byte("{"))
	require.ErrorIs(t, EmailTaskHandler{Sender: &common.InMemoryEmail{}}.ProcessTask(context.Background(), bad), asynq.SkipRetry)
}
