// Package catalog talks to the marketplace backend: product listing and
// producer management, account endpoints, and the live catalog feed.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ecoisla/market/cart"
	"github.com/ecoisla/market/identity"
	"github.com/pkg/errors"
)

type Product struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Origin       string    `json:"origin"`
	Price        float64   `json:"price"`
	Unit         cart.Unit `json:"unit"`
	ImageURL     string    `json:"imageUrl"`
	ProducerID   string    `json:"producerId"`
	ProducerName string    `json:"producerName"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewProduct is the producer form. ImagePath, when set, is uploaded as the
// product photo and takes precedence over ImageURL.
type NewProduct struct {
	Name      string
	Origin    string
	Price     float64
	Unit      cart.Unit
	ImageURL  string
	ImagePath string
}

// ProductUpdate is the editable subset of a product.
type ProductUpdate struct {
	Name   string    `json:"name"`
	Origin string    `json:"origin"`
	Price  float64   `json:"price"`
	Unit   cart.Unit `json:"unit"`
}

type Registration struct {
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	Password string        `json:"password"`
	Role     identity.Role `json:"role"`
}

// APIError is a non-2xx backend response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned %d", e.Status)
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// BaseURL is the backend root the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

// Products lists the catalog, newest first. producerID narrows it to one
// producer when non-empty.
func (c *Client) Products(ctx context.Context, producerID string) ([]Product, error) {
	path := "/api/products"
	if producerID != "" {
		path += "?producerId=" + url.QueryEscape(producerID)
	}
	var out []Product
	if err := c.do(ctx, http.MethodGet, path, "", nil, "", &out); err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return out, nil
}

func (c *Client) CreateProduct(ctx context.Context, token string, p NewProduct) (Product, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	fields := map[string]string{
		"name":     p.Name,
		"origin":   p.Origin,
		"price":    strconv.FormatFloat(p.Price, 'f', -1, 64),
		"unit":     string(p.Unit),
		"imageUrl": p.ImageURL,
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return Product{}, errors.Wrap(err, "write form")
		}
	}
	if p.ImagePath != "" {
		if err := attach(w, "image", p.ImagePath); err != nil {
			return Product{}, err
		}
	}
	if err := w.Close(); err != nil {
		return Product{}, errors.Wrap(err, "close form")
	}

	var out Product
	if err := c.do(ctx, http.MethodPost, "/api/products", w.FormDataContentType(), body, token, &out); err != nil {
		return Product{}, errors.Wrap(err, "create product")
	}
	return out, nil
}

func attach(w *multipart.Writer, field, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open upload")
	}
	defer f.Close()

	part, err := w.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return errors.Wrap(err, "create form file")
	}
	_, err = io.Copy(part, f)
	return errors.Wrap(err, "copy upload")
}

func (c *Client) UpdateProduct(ctx context.Context, token, id string, u ProductUpdate) (Product, error) {
	body, err := json.Marshal(u)
	if err != nil {
		return Product{}, errors.Wrap(err, "encode product")
	}
	var out Product
	path := "/api/products/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodPut, path, "application/json", bytes.NewReader(body), token, &out); err != nil {
		return Product{}, errors.Wrap(err, "update product")
	}
	return out, nil
}

func (c *Client) DeleteProduct(ctx context.Context, token, id string) error {
	path := "/api/products/" + url.PathEscape(id)
	return errors.Wrap(c.do(ctx, http.MethodDelete, path, "", nil, token, nil), "delete product")
}

// ExportProducts streams the caller's products as an xlsx workbook into w.
func (c *Client) ExportProducts(ctx context.Context, token string, w io.Writer) error {
	resp, err := c.send(ctx, http.MethodGet, "/api/products/export", "", nil, token)
	if err != nil {
		return errors.Wrap(err, "export products")
	}
	defer resp.Body.Close()
	_, err = io.Copy(w, resp.Body)
	return errors.Wrap(err, "export products")
}

// ImportResult counts what an import did with each spreadsheet row.
type ImportResult struct {
	Created int `json:"created_count"`
	Updated int `json:"updated_count"`
	Skipped int `json:"skipped_count"`
}

// ImportProducts uploads an xlsx workbook laid out like the export.
func (c *Client) ImportProducts(ctx context.Context, token, path string) (ImportResult, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if err := attach(w, "file", path); err != nil {
		return ImportResult{}, err
	}
	if err := w.Close(); err != nil {
		return ImportResult{}, errors.Wrap(err, "close form")
	}
	var out ImportResult
	if err := c.do(ctx, http.MethodPost, "/api/products/import", w.FormDataContentType(), body, token, &out); err != nil {
		return ImportResult{}, errors.Wrap(err, "import products")
	}
	return out, nil
}

// Register creates an account and returns it signed in.
func (c *Client) Register(ctx context.Context, r Registration) (identity.User, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return identity.User{}, errors.Wrap(err, "encode registration")
	}
	var u identity.User
	if err := c.do(ctx, http.MethodPost, "/api/users", "application/json", bytes.NewReader(body), "", &u); err != nil {
		return identity.User{}, errors.Wrap(err, "register")
	}
	return u, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (identity.User, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return identity.User{}, errors.Wrap(err, "encode login")
	}
	var u identity.User
	if err := c.do(ctx, http.MethodPost, "/api/login", "application/json", bytes.NewReader(body), "", &u); err != nil {
		return identity.User{}, errors.Wrap(err, "login")
	}
	return u, nil
}

// DeleteUser removes the caller's account together with their products.
func (c *Client) DeleteUser(ctx context.Context, token, id string) error {
	path := "/api/users/" + url.PathEscape(id)
	return errors.Wrap(c.do(ctx, http.MethodDelete, path, "", nil, token, nil), "delete account")
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, token string, out interface{}) error {
	resp, err := c.send(ctx, method, path, contentType, body, token)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return errors.Wrap(json.NewDecoder(resp.Body).Decode(out), "decode response")
}

// send performs the request and turns non-2xx responses into *APIError.
func (c *Client) send(ctx context.Context, method, path, contentType string, body io.Reader, token string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	apiErr := &APIError{Status: resp.StatusCode}
	var payload struct {
		Error string `json:"error"`
	}
	if raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); len(raw) > 0 {
		if json.Unmarshal(raw, &payload) == nil {
			apiErr.Message = payload.Error
		}
	}
	return nil, apiErr
}
