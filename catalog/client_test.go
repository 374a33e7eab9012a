package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ecoisla/market/cart"
	"github.com/ecoisla/market/identity"
	"github.com/ecoisla/market/projection"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setup(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", srv.Client())
}

func TestProducts(t *testing.T) {
	c := setup(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products", r.URL.Path)
		assert.Equal(t, "p1", r.URL.Query().Get("producerId"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"a","name":"Papas","price":1.2,"unit":"kg","producerId":"p1","producerName":"Finca"}]`))
	})

	products, err := c.Products(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, cart.UnitKilogram, products[0].Unit)
	assert.Equal(t, "Finca", products[0].ProducerName)
}

func TestAPIError(t *testing.T) {
	c := setup(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Incorrect email or password"}`))
	})

	_, err := c.Login(context.Background(), "a@x.com", "nope")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Incorrect email or password", apiErr.Message)
}

func TestRegisterAndLogin(t *testing.T) {
	c := setup(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		switch r.URL.Path {
		case "/api/users":
			assert.Equal(t, "producer", body["role"])
			w.WriteHeader(http.StatusCreated)
		case "/api/login":
			assert.Equal(t, "secret", body["password"])
		}
		_ = json.NewEncoder(w).Encode(identity.User{ID: "u1", Name: "Ana", Email: body["email"], Role: identity.RoleProducer, Token: "tok"})
	})

	u, err := c.Register(context.Background(), Registration{Name: "Ana", Email: "a@x.com", Password: "secret", Role: identity.RoleProducer})
	require.NoError(t, err)
	assert.True(t, u.IsProducer())
	assert.Equal(t, "tok", u.Token)

	u, err = c.Login(context.Background(), "a@x.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", u.Email)
}

func TestCreateProduct_Multipart(t *testing.T) {
	img := filepath.Join(t.TempDir(), "naranjas.png")
	require.NoError(t, os.WriteFile(img, []byte("png-bytes"), 0o600))

	c := setup(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Naranjas", r.FormValue("name"))
		assert.Equal(t, "2.5", r.FormValue("price"))
		assert.Equal(t, "kilogram", r.FormValue("unit"))

		f, hdr, err := r.FormFile("image")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "naranjas.png", hdr.Filename)
		assert.Equal(t, "png-bytes", string(data))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"p9","name":"Naranjas","price":2.5,"unit":"kilogram","imageUrl":"/uploads/x.png"}`))
	})

	p, err := c.CreateProduct(context.Background(), "tok", NewProduct{Name: "Naranjas", Price: 2.5, Unit: cart.UnitKilogram, ImagePath: img})
	require.NoError(t, err)
	assert.Equal(t, "p9", p.ID)
	assert.Equal(t, "/uploads/x.png", p.ImageURL)
}

func TestUpdateDeleteExport(t *testing.T) {
	c := setup(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut:
			var u ProductUpdate
			require.NoError(t, json.NewDecoder(r.Body).Decode(&u))
			assert.Equal(t, "/api/products/p1", r.URL.Path)
			_ = json.NewEncoder(w).Encode(Product{ID: "p1", Name: u.Name, Price: u.Price})
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		case r.URL.Path == "/api/products/export":
			_, _ = w.Write([]byte("xlsx"))
		}
	})
	ctx := context.Background()

	p, err := c.UpdateProduct(ctx, "tok", "p1", ProductUpdate{Name: "Papas", Price: 1.5})
	require.NoError(t, err)
	assert.Equal(t, 1.5, p.Price)

	require.NoError(t, c.DeleteProduct(ctx, "tok", "p1"))
	require.NoError(t, c.DeleteUser(ctx, "tok", "u1"))

	var buf bytes.Buffer
	require.NoError(t, c.ExportProducts(ctx, "tok", &buf))
	assert.Equal(t, "xlsx", buf.String())
}

func TestImportProducts(t *testing.T) {
	book := filepath.Join(t.TempDir(), "products.xlsx")
	require.NoError(t, os.WriteFile(book, []byte("xlsx-bytes"), 0o600))

	c := setup(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products/import", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "products.xlsx", hdr.Filename)
		_, _ = w.Write([]byte(`{"message":"Import completed","created_count":2,"updated_count":1,"skipped_count":3}`))
	})

	res, err := c.ImportProducts(context.Background(), "tok", book)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Created: 2, Updated: 1, Skipped: 3}, res)

	_, err = c.ImportProducts(context.Background(), "tok", filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)
}

func TestFetch(t *testing.T) {
	t.Run("index", func(t *testing.T) {
		c := setup(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[
				{"name":"Naranjas","price":2.75,"unit":"kilogram","producerName":"Nueva"},
				{"name":"Naranjas","price":2.5,"unit":"kilogram","producerName":"Vieja"},
				{"name":"Mojo","price":3,"unit":"unidad"}
			]`))
		})

		idx := Fetch(context.Background(), c, zap.NewNop())
		e, ok := idx.Lookup(cart.KeyOf("Naranjas", cart.UnitKilogram))
		require.True(t, ok)
		assert.Equal(t, 2.75, e.Price)
		assert.Equal(t, "Nueva", e.ProducerName)

		_, ok = idx.Lookup(cart.KeyOf("Mojo", ""))
		assert.True(t, ok)
		assert.NotNil(t, idx.Catalog())
	})

	t.Run("backend down", func(t *testing.T) {
		c := setup(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		idx := Fetch(context.Background(), c, zap.NewNop())
		assert.Nil(t, idx)
		assert.Nil(t, idx.Catalog())

		// the cart still renders at snapshot prices, nothing flagged
		v := projection.Project(cart.Cart{{Name: "Mojo", Price: 3, Unit: cart.UnitEach, Quantity: 2}}, idx.Catalog())
		assert.Equal(t, 6.0, v.Total)
		assert.False(t, v.Rows[0].Unlisted)
	})
}

func TestFeedURL(t *testing.T) {
	assert.Equal(t, "ws://localhost:3000/api/products/feed", FeedURL("http://localhost:3000/"))
	assert.Equal(t, "wss://api.example.com/api/products/feed", FeedURL("https://api.example.com"))
}

func TestWatch(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		_ = conn.WriteJSON(Event{Type: EventCreated, Product: Product{ID: "p1", Name: "Gofio"}})
		_ = conn.WriteJSON(Event{Type: EventDeleted, Product: Product{ID: "p1"}})
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var got []Event
	err := Watch(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/api/products/feed", func(e Event) {
		got = append(got, e)
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, EventCreated, got[0].Type)
	assert.Equal(t, "Gofio", got[0].Product.Name)
	assert.Equal(t, EventDeleted, got[1].Type)
}
