package assets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/maruel/natural"
	"go.uber.org/zap"

	"pbc/config"
	"pbc/fonts"
	imgutil "pbc/utils/images"
)

// ID is an asset identifier. The service hands out integer primary keys but
// block props and style values carry them as strings, so the decoder accepts
// both forms.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*id = ""
	case string:
		*id = ID(strings.TrimSpace(t))
	case float64:
		*id = ID(strconv.FormatFloat(t, 'f', -1, 64))
	default:
		return fmt.Errorf("asset id has unsupported type %T", t)
	}
	return nil
}

// Collection is the owning collection reference on a library row.
type Collection struct {
	ID    ID     `json:"id"`
	Title string `json:"title"`
}

// AssetPayload is one row of the asset library as the service serves it.
type AssetPayload struct {
	ID              ID         `json:"id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Kind            Kind       `json:"kind"`
	Description     string     `json:"description"`
	URL             string     `json:"url"`
	MimeType        string     `json:"mime_type"`
	SizeBytes       int64      `json:"size_bytes"`
	Width           int        `json:"width"`
	Height          int        `json:"height"`
	DurationSeconds float64    `json:"duration_seconds"`
	Collection      Collection `json:"collection"`
	Visibility      string     `json:"effective_visibility"`
	IsExternal      bool       `json:"is_external"`
	ExternalDomain  string     `json:"external_domain"`
}

// ListOptions filter the library listing. Kinds travel to the service as
// repeated kind parameters; Collection and Search are applied on the client
// since the service does not know them.
type ListOptions struct {
	Kinds      []Kind
	Collection string // collection title (case-insensitive) or ID
	Search     string // substring over title, slug and description
}

// Client talks to the asset service over HTTP.
type Client struct {
	endpoint *url.URL
	token    string
	client   *http.Client
	log      *zap.Logger

	maxUploadDim int
	jpegQuality  int
}

// NewClient builds a client from configuration. A nil httpClient selects a
// default one honoring the configured timeout.
func NewClient(cfg config.AssetsConfig, httpClient *http.Client, log *zap.Logger) (*Client, error) {
	endpoint, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid assets endpoint: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: time.Duration(cfg.TimeoutSec) * time.Second}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		endpoint:     endpoint,
		token:        string(cfg.Token),
		client:       httpClient,
		log:          log.Named("assets"),
		maxUploadDim: cfg.MaxUploadDim,
		jpegQuality:  cfg.JPEGQuality,
	}, nil
}

// route returns the absolute URL for a service route below the endpoint.
// Routes keep their trailing slash, the service insists on it.
func (c *Client) route(suffix string) string {
	u := *c.endpoint
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + suffix
	return u.String()
}

func (c *Client) do(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if s := strings.TrimSpace(string(msg)); s != "" {
			return fmt.Errorf("asset service returned %s: %s", resp.Status, s)
		}
		return fmt.Errorf("asset service returned %s", resp.Status)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("unable to decode asset service response: %w", err)
	}
	return nil
}

// List fetches the asset library, natural-sorted by title so "Page 10"
// follows "Page 2" in pickers.
func (c *Client) List(ctx context.Context, opts ListOptions) ([]AssetPayload, error) {
	target := c.route("")
	if len(opts.Kinds) > 0 {
		q := url.Values{}
		for _, k := range opts.Kinds {
			q.Add("kind", k.String())
		}
		target += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	var body struct {
		Assets []AssetPayload `json:"assets"`
	}
	if err := c.do(req, &body); err != nil {
		return nil, err
	}

	list := filterAssets(body.Assets, opts)
	sort.SliceStable(list, func(i, j int) bool {
		return natural.Less(strings.ToLower(list[i].Title), strings.ToLower(list[j].Title))
	})
	return list, nil
}

func filterAssets(list []AssetPayload, opts ListOptions) []AssetPayload {
	if opts.Collection == "" && opts.Search == "" {
		return list
	}
	search := strings.ToLower(opts.Search)
	out := list[:0]
	for _, a := range list {
		if opts.Collection != "" &&
			!strings.EqualFold(a.Collection.Title, opts.Collection) &&
			string(a.Collection.ID) != opts.Collection {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(a.Title), search) &&
			!strings.Contains(strings.ToLower(a.Slug), search) &&
			!strings.Contains(strings.ToLower(a.Description), search) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Get fetches one asset by ID.
func (c *Client) Get(ctx context.Context, id ID) (AssetPayload, error) {
	if id == "" {
		return AssetPayload{}, errors.New("empty asset id")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.route(string(id)+"/"), nil)
	if err != nil {
		return AssetPayload{}, err
	}
	var body struct {
		Asset AssetPayload `json:"asset"`
	}
	if err := c.do(req, &body); err != nil {
		return AssetPayload{}, err
	}
	return body.Asset, nil
}

// UploadFont sends a font file to the service. The file has to pass local
// validation, extension and content agreeing, before any bytes leave the
// machine.
func (c *Client) UploadFont(ctx context.Context, filename, title string, data []byte) (AssetPayload, error) {
	format, err := fonts.ValidateUpload(filename, data)
	if err != nil {
		return AssetPayload{}, err
	}
	c.log.Info("uploading font",
		zap.String("file", filename),
		zap.String("format", format.String()),
		zap.Int("size", len(data)))
	return c.upload(ctx, "fonts/upload/", filename, title, data)
}

// UploadInline sends an editor upload to the service. Images are probed
// first: dimensions always, encoder quality for JPEG, and anything larger
// than the configured limit is downscaled before dispatch.
func (c *Client) UploadInline(ctx context.Context, filename, title string, data []byte) (AssetPayload, error) {
	if InferKind(filename, "", false) == KindImage {
		filename, data = c.prepareImage(filename, data)
	} else {
		c.log.Info("uploading asset",
			zap.String("file", filename),
			zap.String("kind", InferKind(filename, "", false).String()),
			zap.Int("size", len(data)))
	}
	return c.upload(ctx, "upload/", filename, title, data)
}

// prepareImage probes and, when needed, downscales an image upload. Probe or
// resample failures leave the payload alone, the service will decide what it
// thinks of the bytes.
func (c *Client) prepareImage(filename string, data []byte) (string, []byte) {
	info, err := imgutil.Probe(data)
	if err != nil {
		c.log.Warn("unable to probe image upload", zap.String("file", filename), zap.Error(err))
		return filename, data
	}

	fields := []zap.Field{
		zap.String("file", filename),
		zap.String("format", info.Format),
		zap.Int("width", info.Width),
		zap.Int("height", info.Height),
		zap.Int("size", len(data)),
	}
	if info.JPEGQuality > 0 {
		fields = append(fields, zap.Int("jpeg_quality", info.JPEGQuality))
	}
	c.log.Info("uploading image", fields...)

	resized, out, err := imgutil.Downscale(data, info, c.maxUploadDim, c.jpegQuality)
	if err != nil {
		c.log.Warn("unable to downscale image upload", zap.String("file", filename), zap.Error(err))
		return filename, data
	}
	if out.Width == info.Width && out.Height == info.Height {
		return filename, data
	}
	if out.Format != info.Format {
		filename = strings.TrimSuffix(filename, filepath.Ext(filename)) + "." + out.Ext()
	}
	c.log.Info("downscaled image upload",
		zap.String("file", filename),
		zap.Int("width", out.Width),
		zap.Int("height", out.Height),
		zap.Int("size", len(resized)))
	return filename, resized
}

func (c *Client) upload(ctx context.Context, suffix, filename, title string, data []byte) (AssetPayload, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return AssetPayload{}, err
	}
	if _, err := fw.Write(data); err != nil {
		return AssetPayload{}, err
	}
	if title != "" {
		if err := mw.WriteField("title", title); err != nil {
			return AssetPayload{}, err
		}
	}
	if err := mw.Close(); err != nil {
		return AssetPayload{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.route(suffix), &buf)
	if err != nil {
		return AssetPayload{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var body struct {
		Asset AssetPayload `json:"asset"`
	}
	if err := c.do(req, &body); err != nil {
		return AssetPayload{}, err
	}
	return body.Asset, nil
}

// Fetch downloads an asset payload from its serving URL. Relative URLs
// resolve against the service endpoint.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid asset url %q: %w", rawURL, err)
	}
	target := c.endpoint.ResolveReference(u).String()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("asset download returned %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// Font converts a library row into the font reference style values carry.
// The service stores no family name, so FamilyName falls back to the minted
// one.
func (a AssetPayload) Font() fonts.FontAsset {
	return fonts.FontAsset{
		ID:     string(a.ID),
		Title:  a.Title,
		URL:    a.URL,
		Format: fonts.GuessFormat(a.URL, a.MimeType),
	}
}

// FontAsset resolves a font reference through Get. It implements the font
// registry source.
func (c *Client) FontAsset(ctx context.Context, id string) (fonts.FontAsset, error) {
	a, err := c.Get(ctx, ID(id))
	if err != nil {
		return fonts.FontAsset{}, err
	}
	if a.Kind != KindFont {
		return fonts.FontAsset{}, fmt.Errorf("asset %s is %s, not a font", id, a.Kind)
	}
	return a.Font(), nil
}

// AssetURL resolves an asset reference to its serving URL. It implements the
// site logo resolver.
func (c *Client) AssetURL(ctx context.Context, id string) (string, error) {
	a, err := c.Get(ctx, ID(id))
	if err != nil {
		return "", err
	}
	if a.URL == "" {
		return "", fmt.Errorf("asset %s has no url", id)
	}
	return a.URL, nil
}
