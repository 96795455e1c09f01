// Package meme fetches one random post from the r/memes feed.
package meme

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nexora-community/nexora-bot/internal/utils"
)

const feedURL = "https://www.reddit.com/r/memes/random/.json"

// ErrNoImage is returned when the fetched post carries no image URL.
var ErrNoImage = errors.New("meme post has no image")

// Post is one meme ready to embed.
type Post struct {
	Title    string
	ImageURL string
	Upvotes  int
}

// Client fetches memes over HTTP. Reddit rejects requests without a real
// User-Agent, so the client always sets one.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a meme client.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		userAgent:  "nexora-bot (community moderation bot)",
	}
}

type listing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title string `json:"title"`
				URL   string `json:"url"`
				Ups   int    `json:"ups"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Fetch retrieves one random post from the feed.
func (c *Client) Fetch(ctx context.Context) (Post, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return Post{}, fmt.Errorf("failed to build meme request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Post{}, fmt.Errorf("failed to fetch meme: %w", err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return Post{}, fmt.Errorf("meme feed returned status %d", resp.StatusCode)
	}

	// The random endpoint wraps the post in a two-element listing array.
	var payload []listing
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Post{}, fmt.Errorf("failed to decode meme response: %w", err)
	}
	if len(payload) == 0 || len(payload[0].Data.Children) == 0 {
		return Post{}, ErrNoImage
	}

	post := payload[0].Data.Children[0].Data
	if post.URL == "" {
		return Post{}, ErrNoImage
	}
	return Post{Title: post.Title, ImageURL: post.URL, Upvotes: post.Ups}, nil
}
