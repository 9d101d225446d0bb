package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mitchellh/mapstructure"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/store"
)

// ItemResponse is one page of a list endpoint.
type ItemResponse struct {
	Items   []Item
	Found   int
	Pages   int
	Page    int
	PerPage int `mapstructure:"per_page"`
}

type Item any

// GetItems fetches path and every following page and returns the items of all pages.
func (c *Client) GetItems(ctx context.Context, path string) ([]Item, error) {
	var items []Item

	response, err := c.getPage(ctx, path, 0)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("got response from gateway", zap.String("path", path), zap.Int("pages", response.Pages), zap.Int("found", response.Found))

	items = append(items, response.Items...)

	for response.Page < (response.Pages - 1) {
		c.logger.Debug("additional request needed", zap.String("reason", fmt.Sprintf(
			"current page (%d) < all page count (%d)", response.Page+1, response.Pages),
		))

		response, err = c.getPage(ctx, path, response.Page+1)
		if err != nil {
			return nil, err
		}

		items = append(items, response.Items...)
	}

	return items, nil
}

func (c *Client) getPage(ctx context.Context, path string, page int) (*ItemResponse, error) {
	resp, err := c.request(ctx).
		SetQueryParam("page", strconv.Itoa(page)).
		SetQueryParam("per_page", perPage).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	if err := responseError(resp); err != nil {
		return nil, err
	}

	var response ItemResponse
	if err := mapstructure.Decode(data(resp).Value(), &response); err != nil {
		return nil, fmt.Errorf("decode %s page %d: %w", path, page, err)
	}

	return &response, nil
}

// getJSON decodes the data of a single object response into target.
func (c *Client) getJSON(ctx context.Context, path string, target any) error {
	resp, err := c.request(ctx).Get(path)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	if err := responseError(resp); err != nil {
		return err
	}

	return decodeItems(data(resp).Value(), target)
}

func (c *Client) send(ctx context.Context, method, path string, body any) error {
	resp, err := c.request(ctx).SetBody(body).Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	return responseError(resp)
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetHeader("Accept", contentType)
}

func data(resp *resty.Response) gjson.Result {
	return gjson.GetBytes(resp.Body(), "data")
}

// responseError turns a non 2xx reply into a gateway sentinel using the
// envelope message.
func responseError(resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}

	message := gjson.GetBytes(resp.Body(), "message").String()
	if message == "" {
		message = resp.Status()
	}

	switch resp.StatusCode() {
	case http.StatusNotFound:
		return store.ErrNotFound
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", store.ErrInvalid, message)
	case http.StatusUnprocessableEntity:
		if err := store.Classify(errors.New(message)); errors.Is(err, store.ErrResumeRequired) || errors.Is(err, store.ErrRoleNotVerified) {
			return err
		}
		return fmt.Errorf("%w: %s", store.ErrInvalid, message)
	default:
		return fmt.Errorf("bad status: %d %s", resp.StatusCode(), message)
	}
}

// decodeItems decodes generic JSON values into records using their json tags.
func decodeItems(input, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     target,
		TagName:    "json",
		DecodeHook: mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("decode records: %w", err)
	}
	return nil
}
