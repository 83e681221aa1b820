package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rashed-dev/relic/internal/models"
	"github.com/rashed-dev/relic/internal/shared"
)

const subjectHeader = "X-Subject-Id"

// Client provides stateless request functions against the remote artifact
// API. Safe for concurrent use; holds no artifact state.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an artifact API client for the given base URL.
func NewClient(baseURL string, client *http.Client) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:20112"
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// errorBody is the `{error}` payload non-2xx responses carry.
type errorBody struct {
	Error string `json:"error"`
}

// likeResponse is the payload of the like endpoint.
type likeResponse struct {
	Likes int `json:"likes"`
}

// createPayload is the create request body: the draft fields plus the
// contributor stamp the server records as addedBy.
type createPayload struct {
	models.ArtifactDraft
	AddedBy models.Contributor `json:"addedBy"`
}

// List retrieves the full artifact collection.
func (c *Client) List(ctx context.Context) ([]models.Artifact, error) {
	var artifacts []models.Artifact
	if err := c.doRequest(ctx, http.MethodGet, "/artifacts", "", nil, &artifacts); err != nil {
		return nil, err
	}
	return artifacts, nil
}

// Search retrieves artifacts whose name contains the term
// (case-insensitive, matched server-side). An empty or whitespace term is
// equivalent to List.
func (c *Client) Search(ctx context.Context, term string) ([]models.Artifact, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return c.List(ctx)
	}

	endpoint := fmt.Sprintf("/artifacts/search?name=%s", url.QueryEscape(term))

	var artifacts []models.Artifact
	if err := c.doRequest(ctx, http.MethodGet, endpoint, "", nil, &artifacts); err != nil {
		return nil, err
	}
	return artifacts, nil
}

// Get retrieves a single artifact by ID.
func (c *Client) Get(ctx context.Context, id string) (*models.Artifact, error) {
	var artifact models.Artifact
	endpoint := fmt.Sprintf("/artifacts/%s", url.PathEscape(id))
	if err := c.doRequest(ctx, http.MethodGet, endpoint, "", nil, &artifact); err != nil {
		return nil, err
	}
	return &artifact, nil
}

// Create submits a draft. The server stamps addedBy from the owner identity,
// assigns the ID, and initializes the like state to zero.
func (c *Client) Create(ctx context.Context, draft models.ArtifactDraft, owner models.Identity) (*models.Artifact, error) {
	if err := draft.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	payload := createPayload{ArtifactDraft: draft, AddedBy: owner.Contributor()}

	var artifact models.Artifact
	if err := c.doRequest(ctx, http.MethodPost, "/artifacts", owner.SubjectID, payload, &artifact); err != nil {
		return nil, err
	}
	return &artifact, nil
}

// Update replaces an artifact's fields. The server enforces that the
// requester owns the artifact; NotFound and Forbidden come back as their
// sentinels.
func (c *Client) Update(ctx context.Context, id string, patch models.ArtifactDraft, requesterSubjectID string) (*models.Artifact, error) {
	if err := patch.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	var artifact models.Artifact
	endpoint := fmt.Sprintf("/artifacts/%s", url.PathEscape(id))
	if err := c.doRequest(ctx, http.MethodPut, endpoint, requesterSubjectID, patch, &artifact); err != nil {
		return nil, err
	}
	return &artifact, nil
}

// Delete removes an artifact. Same ownership rule as Update.
func (c *Client) Delete(ctx context.Context, id, requesterSubjectID string) error {
	endpoint := fmt.Sprintf("/artifacts/%s", url.PathEscape(id))
	return c.doRequest(ctx, http.MethodDelete, endpoint, requesterSubjectID, nil, nil)
}

// Like records the subject's like and returns the server's authoritative
// count. A repeat like from the same subject is a no-op returning the count
// unchanged; the server performs the membership check and increment as one
// atomic step per artifact.
func (c *Client) Like(ctx context.Context, id, requesterSubjectID string) (int, error) {
	endpoint := fmt.Sprintf("/artifacts/%s/like", url.PathEscape(id))
	body := map[string]string{"userId": requesterSubjectID}

	var resp likeResponse
	if err := c.doRequest(ctx, http.MethodPut, endpoint, requesterSubjectID, body, &resp); err != nil {
		return 0, err
	}
	return resp.Likes, nil
}

// ListByOwner retrieves the artifacts a subject added.
func (c *Client) ListByOwner(ctx context.Context, subjectID string) ([]models.Artifact, error) {
	var artifacts []models.Artifact
	endpoint := fmt.Sprintf("/my-artifacts/%s", url.PathEscape(subjectID))
	if err := c.doRequest(ctx, http.MethodGet, endpoint, "", nil, &artifacts); err != nil {
		return nil, err
	}
	return artifacts, nil
}

// ListLikedBy retrieves the artifacts a subject likes.
func (c *Client) ListLikedBy(ctx context.Context, subjectID string) ([]models.Artifact, error) {
	var artifacts []models.Artifact
	endpoint := fmt.Sprintf("/liked-artifacts/%s", url.PathEscape(subjectID))
	if err := c.doRequest(ctx, http.MethodGet, endpoint, "", nil, &artifacts); err != nil {
		return nil, err
	}
	return artifacts, nil
}

// ListTopLiked retrieves the n most liked artifacts, ordered by like count
// descending with ties broken oldest first.
func (c *Client) ListTopLiked(ctx context.Context, n int) ([]models.Artifact, error) {
	if n <= 0 {
		n = 6
	}

	var artifacts []models.Artifact
	endpoint := fmt.Sprintf("/artifacts/top-liked?limit=%d", n)
	if err := c.doRequest(ctx, http.MethodGet, endpoint, "", nil, &artifacts); err != nil {
		return nil, err
	}
	return artifacts, nil
}

// doRequest performs a JSON request against the artifact API and maps
// failures onto the resource error taxonomy.
func (c *Client) doRequest(ctx context.Context, method, endpoint, subjectID string, body, result any) error {
	var reqBody *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}
		reqBody = bytes.NewReader(payload)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if subjectID != "" {
		req.Header.Set(subjectHeader, subjectID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.mapFailure(resp)
	}

	if result != nil {
		if !isJSON(resp.Header.Get("Content-Type")) {
			return fmt.Errorf("%w: unexpected content type %q", shared.ErrInvalidResponse, resp.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidResponse, err)
		}
	}

	return nil
}

// mapFailure converts a non-2xx response into a taxonomy error, reading the
// `{error}` body for detail when present.
func (c *Client) mapFailure(resp *http.Response) error {
	detail := fmt.Sprintf("status %d", resp.StatusCode)
	if isJSON(resp.Header.Get("Content-Type")) {
		var body errorBody
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
			detail = body.Error
		}
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", shared.ErrNotFound, detail)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", shared.ErrForbidden, detail)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", shared.ErrUnauthorized, detail)
	default:
		if resp.StatusCode >= 500 {
			return fmt.Errorf("%w: %s", shared.ErrUnreachable, detail)
		}
		return fmt.Errorf("%w: %s", shared.ErrInvalidResponse, detail)
	}
}

func isJSON(contentType string) bool {
	return strings.Contains(contentType, "application/json")
}
