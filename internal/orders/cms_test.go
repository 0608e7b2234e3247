package orders

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/fjod/go_storefront/internal/content"
	"github.com/fjod/go_storefront/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeContentStore keeps created documents and answers the order-by-id query.
type fakeContentStore struct {
	mu   sync.Mutex
	docs []json.RawMessage
}

func (f *fakeContentStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.Method == http.MethodPost {
		var body struct {
			Mutations []struct {
				Create json.RawMessage `json:"create"`
			} `json:"mutations"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		for _, m := range body.Mutations {
			f.docs = append(f.docs, m.Create)
		}
		_, _ = io.WriteString(w, `{"results":[{"id":"doc","operation":"create"}]}`)
		return
	}

	var want string
	_ = json.Unmarshal([]byte(r.URL.Query().Get("$orderId")), &want)
	for _, d := range f.docs {
		var probe struct {
			OrderID string `json:"orderId"`
		}
		_ = json.Unmarshal(d, &probe)
		if probe.OrderID == want {
			_, _ = w.Write([]byte(`{"result":` + string(d) + `}`))
			return
		}
	}
	_, _ = io.WriteString(w, `{"result":null}`)
}

func (f *fakeContentStore) created() []json.RawMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]json.RawMessage(nil), f.docs...)
}

func newCMSRepo(t *testing.T) (*CMSRepository, *fakeContentStore) {
	fake := &fakeContentStore{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client := content.NewClient(content.Options{
		BaseURL:    srv.URL,
		Dataset:    "production",
		APIVersion: "2024-01-01",
	}, logger.Discard())
	return NewCMSRepository(client), fake
}

func TestCMSRepository_RoundTrip(t *testing.T) {
	repo, fake := newCMSRepo(t)
	ctx := context.Background()
	order := newTestOrder("s1", time.Now())

	require.NoError(t, repo.CreateOrder(ctx, order))
	docs := fake.created()
	require.Len(t, docs, 1)
	assert.Contains(t, string(docs[0]), `"_type":"checkout"`)
	assert.Contains(t, string(docs[0]), `"firstName":"Ada"`)

	got, err := repo.GetOrderByID(ctx, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderID, got.OrderID)
	assert.Equal(t, order.Customer, got.Customer)
	assert.Len(t, got.CartItems, 2)
	assert.True(t, order.Total().Equal(got.Total()))
}

func TestCMSRepository_NotFound(t *testing.T) {
	repo, _ := newCMSRepo(t)

	_, err := repo.GetOrderByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
