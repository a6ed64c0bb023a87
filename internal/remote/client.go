package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"time"

	"github.com/mdouchement/corkboard/internal/cberror"
	"github.com/mdouchement/corkboard/internal/model"
	"github.com/mdouchement/corkboard/internal/store"
	"github.com/pkg/errors"
)

type (
	// A Client performs all the interactions with a board server.
	Client struct {
		http     *http.Client
		endpoint string
		bearer   string
	}

	// A SnapshotSummary is an entry of the timeline.
	SnapshotSummary struct {
		ID        string    `json:"id"`
		Date      string    `json:"date"`
		CreatedAt time.Time `json:"created_at"`
		CreatedBy string    `json:"created_by"`
		Count     int       `json:"count"`
	}

	p map[string]interface{}
)

var _ store.Remote = (*Client)(nil)

// NewDefaultClient returns a new Client with default HTTP client.
func NewDefaultClient(endpoint string) (*Client, error) {
	return NewClient(http.DefaultClient, endpoint)
}

// NewClient returns a new Client.
func NewClient(c *http.Client, endpoint string) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, errors.Wrap(err, "could not parse endpoint")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Errorf("unsupported endpoint scheme %q", u.Scheme)
	}
	return &Client{http: c, endpoint: endpoint}, nil
}

// Endpoint returns the server URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// BearerToken returns the token used to authenticate the requests.
func (c *Client) BearerToken() string {
	return c.bearer
}

// SetBearerToken sets the token used to authenticate the requests.
func (c *Client) SetBearerToken(token string) {
	c.bearer = token
}

///////////////////
//               //
// Users         //
//               //
///////////////////

// Version returns the server version.
func (c *Client) Version(ctx context.Context) (string, error) {
	var v struct {
		Version string `json:"version"`
	}
	err := c.do(ctx, http.MethodGet, "/version", nil, &v)
	return v.Version, err
}

// Login logs in with the given name and keeps the returned token.
func (c *Client) Login(ctx context.Context, name string) (*model.User, error) {
	var login struct {
		Token string      `json:"token"`
		User  *model.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/login", p{"name": name}, &login); err != nil {
		return nil, err
	}

	c.bearer = login.Token
	return login.User, nil
}

// Users returns the flatmates.
func (c *Client) Users(ctx context.Context) ([]*model.User, error) {
	var users []*model.User
	err := c.do(ctx, http.MethodGet, "/users", nil, &users)
	return users, err
}

// Me returns the logged in user.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var user model.User
	err := c.do(ctx, http.MethodGet, "/users/me", nil, &user)
	return &user, err
}

// UpdateMe sets the social handle and avatar of the logged in user. Nil values are left untouched.
func (c *Client) UpdateMe(ctx context.Context, handle, avatar *string) (*model.User, error) {
	body := p{}
	if handle != nil {
		body["handle"] = *handle
	}
	if avatar != nil {
		body["avatar"] = *avatar
	}

	var user model.User
	err := c.do(ctx, http.MethodPatch, "/users/me", body, &user)
	return &user, err
}

///////////////////
//               //
// Items         //
//               //
///////////////////

// ListItems returns all the items in stacking order.
func (c *Client) ListItems(ctx context.Context) ([]*model.Item, error) {
	var items []*model.Item
	err := c.do(ctx, http.MethodGet, "/items", nil, &items)
	return items, err
}

// CreateItem pins the item on the server, keeping its id.
func (c *Client) CreateItem(ctx context.Context, item *model.Item) error {
	body := p{
		"id":       item.ID,
		"type":     item.Type,
		"x":        item.X,
		"y":        item.Y,
		"rotation": item.Rotation,
		"z_index":  item.ZIndex,
	}
	if item.Color != "" {
		body["color"] = item.Color
	}
	if len(item.Content) > 0 {
		body["content"] = item.Content
	}

	return c.do(ctx, http.MethodPost, "/items", body, item)
}

// UpdateItem sends a partial update of the item.
func (c *Client) UpdateItem(ctx context.Context, id string, patch model.Patch) error {
	if patch.Empty() {
		return nil
	}

	// The server sets the author from the session.
	patch.UpdatedBy = nil
	return notFound(c.do(ctx, http.MethodPatch, path.Join("/items", url.PathEscape(id)), patch, nil))
}

// DeleteItem unpins the item.
func (c *Client) DeleteItem(ctx context.Context, id string) error {
	return notFound(c.do(ctx, http.MethodDelete, path.Join("/items", url.PathEscape(id)), nil, nil))
}

// BringToFront stacks the item above all the others.
func (c *Client) BringToFront(ctx context.Context, id string) (*model.Item, error) {
	var item model.Item
	err := c.do(ctx, http.MethodPost, path.Join("/items", url.PathEscape(id), "front"), nil, &item)
	return &item, notFound(err)
}

// SendToBack stacks the item below all the others.
func (c *Client) SendToBack(ctx context.Context, id string) (*model.Item, error) {
	var item model.Item
	err := c.do(ctx, http.MethodPost, path.Join("/items", url.PathEscape(id), "back"), nil, &item)
	return &item, notFound(err)
}

// BoardPDF writes the PDF rendering of the live board.
func (c *Client) BoardPDF(ctx context.Context, w io.Writer) error {
	return c.download(ctx, "/board/pdf", w)
}

///////////////////
//               //
// Timeline      //
//               //
///////////////////

// CaptureSnapshot captures the board for the given day, today when empty.
func (c *Client) CaptureSnapshot(ctx context.Context, date string) (*model.Snapshot, error) {
	var body interface{}
	if date != "" {
		body = p{"date": date}
	}

	var snapshot model.Snapshot
	err := c.do(ctx, http.MethodPost, "/snapshots", body, &snapshot)
	return &snapshot, err
}

// Snapshots returns the timeline.
func (c *Client) Snapshots(ctx context.Context) ([]SnapshotSummary, error) {
	var snapshots []SnapshotSummary
	err := c.do(ctx, http.MethodGet, "/snapshots", nil, &snapshots)
	return snapshots, err
}

// Snapshot returns the snapshot of the given day.
func (c *Client) Snapshot(ctx context.Context, date string) (*model.Snapshot, error) {
	var snapshot model.Snapshot
	err := c.do(ctx, http.MethodGet, path.Join("/snapshots", url.PathEscape(date)), nil, &snapshot)
	return &snapshot, err
}

// SnapshotPDF writes the PDF rendering of the snapshot of the given day.
func (c *Client) SnapshotPDF(ctx context.Context, date string, w io.Writer) error {
	return c.download(ctx, path.Join("/snapshots", url.PathEscape(date), "pdf"), w)
}

// CaptureMenu captures the content of a menu item for the given day, today when empty.
func (c *Client) CaptureMenu(ctx context.Context, itemID, date string) (*model.MenuEntry, error) {
	body := p{"item_id": itemID}
	if date != "" {
		body["date"] = date
	}

	var entry model.MenuEntry
	err := c.do(ctx, http.MethodPost, "/menu-entries", body, &entry)
	return &entry, err
}

// MenuEntries returns the menus captured on the given day, all of them when empty.
func (c *Client) MenuEntries(ctx context.Context, date string) ([]*model.MenuEntry, error) {
	endpoint := "/menu-entries"
	if date != "" {
		endpoint += "?" + url.Values{"date": []string{date}}.Encode()
	}

	var entries []*model.MenuEntry
	err := c.do(ctx, http.MethodGet, endpoint, nil, &entries)
	return entries, err
}

///////////////////
//               //
// Uploads       //
//               //
///////////////////

// Upload sends a picture and returns its public URL.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	part, err := form.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return "", errors.Wrap(err, "could not build form")
	}
	if _, err = io.Copy(part, r); err != nil {
		return "", errors.Wrap(err, "could not read file")
	}
	if err = form.Close(); err != nil {
		return "", errors.Wrap(err, "could not build form")
	}

	//
	// Build request
	req, err := c.request(ctx, http.MethodPost, "/uploads", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	//
	// Perform request
	var upload struct {
		URL string `json:"url"`
	}
	if err = c.perform(req, &upload); err != nil {
		return "", err
	}

	u, err := c.resolve(upload.URL)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

///////////////////
//               //
// Internals     //
//               //
///////////////////

func (c *Client) resolve(endpoint string) (*url.URL, error) {
	base, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, errors.Wrap(err, "could not parse endpoint")
	}

	ref, err := url.Parse(endpoint)
	if err != nil {
		return nil, errors.Wrap(err, "could not parse path")
	}
	ref.Path = path.Join(base.Path, ref.Path)

	return base.ResolveReference(ref), nil
}

func (c *Client) request(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	u, err := c.resolve(endpoint)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, errors.Wrap(err, "could not build request")
	}
	req.Header.Add("Accept", "application/json")
	if c.bearer != "" {
		req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", c.bearer))
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out interface{}) error {
	//
	// Build request
	var r io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "could not serialize request")
		}
		r = bytes.NewReader(payload)
	}

	req, err := c.request(ctx, method, endpoint, r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Add("Content-Type", "application/json")
	}

	return c.perform(req, out)
}

func (c *Client) perform(req *http.Request, out interface{}) error {
	//
	// Perform request
	res, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "could not perform request")
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return parseError(res.Body, res.StatusCode)
	}

	//
	// Process response
	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}
	dec := json.NewDecoder(res.Body)
	return errors.Wrap(dec.Decode(out), "could not parse response")
}

func (c *Client) download(ctx context.Context, endpoint string, w io.Writer) error {
	req, err := c.request(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/pdf")

	res, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "could not perform request")
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return parseError(res.Body, res.StatusCode)
	}

	_, err = io.Copy(w, res.Body)
	return errors.Wrap(err, "could not read response")
}

// parseError decodes the error rendered by the server.
func parseError(r io.Reader, code int) error {
	var cberr cberror.CBError
	dec := json.NewDecoder(r)
	if err := dec.Decode(&cberr); err != nil || cberr.FieldError.Message == "" {
		cberr.FieldError.Message = http.StatusText(code)
	}
	cberr.HTTPCode = code
	return &cberr
}

// notFound translates missing items to store.ErrNotFound.
func notFound(err error) error {
	if err != nil && cberror.Tag(err) == cberror.TagItemNotFound {
		return errors.Wrap(store.ErrNotFound, err.Error())
	}
	return err
}
