package services

import (
	"context"
	"net/url"
	"strings"

	"folio/app/models"
	"folio/app/repositories"

	"github.com/gorilla/feeds"
	"github.com/pkg/errors"
)

const feedLimit = 20

// Feed formats
const (
	FormatRSS  = "rss"
	FormatAtom = "atom"
	FormatJSON = "json"
)

// SiteInfo describes the blog in syndication feeds.
type SiteInfo struct {
	Title       string
	URL         string
	Description string
	Author      string
}

// FeedService renders published posts as RSS, Atom or JSON Feed.
type FeedService struct {
	store repositories.PostStore
	site  SiteInfo
}

func NewFeedService(store repositories.PostStore, site SiteInfo) *FeedService {
	site.URL = strings.TrimRight(site.URL, "/")
	return &FeedService{store: store, site: site}
}

// PostURL is the public page for a post.
func (s *FeedService) PostURL(id string) string {
	return s.site.URL + "/blog-post.html?id=" + url.QueryEscape(id)
}

// Feed builds the feed from the newest published posts.
func (s *FeedService) Feed(ctx context.Context) (*feeds.Feed, error) {
	posts, err := s.store.List(ctx, repositories.ListFilter{PublishedOnly: true})
	if err != nil {
		return nil, err
	}
	if len(posts) > feedLimit {
		posts = posts[:feedLimit]
	}

	feed := &feeds.Feed{
		Title:       s.site.Title,
		Link:        &feeds.Link{Href: s.site.URL + "/"},
		Description: s.site.Description,
		Id:          s.site.URL + "/",
	}
	if s.site.Author != "" {
		feed.Author = &feeds.Author{Name: s.site.Author}
	}
	if len(posts) > 0 {
		feed.Updated = posts[0].CreatedAt
		feed.Created = posts[len(posts)-1].CreatedAt
	}

	for _, post := range posts {
		feed.Items = append(feed.Items, s.feedItem(post))
	}
	return feed, nil
}

// Render encodes the feed in format and returns it with its content type.
func (s *FeedService) Render(ctx context.Context, format string) (string, string, error) {
	var encode func(*feeds.Feed) (string, error)
	var contentType string
	switch strings.ToLower(format) {
	case "", FormatRSS:
		encode, contentType = (*feeds.Feed).ToRss, "application/rss+xml; charset=utf-8"
	case FormatAtom:
		encode, contentType = (*feeds.Feed).ToAtom, "application/atom+xml; charset=utf-8"
	case FormatJSON:
		encode, contentType = (*feeds.Feed).ToJSON, "application/feed+json; charset=utf-8"
	default:
		return "", "", errors.Wrapf(ErrInvalidInput, "unknown feed format %q", format)
	}

	feed, err := s.Feed(ctx)
	if err != nil {
		return "", "", err
	}
	body, err := encode(feed)
	if err != nil {
		return "", "", errors.Wrap(err, "failed to encode feed")
	}
	return body, contentType, nil
}

func (s *FeedService) feedItem(post *models.Post) *feeds.Item {
	link := s.PostURL(post.ID)
	item := &feeds.Item{
		Title:       post.Title,
		Link:        &feeds.Link{Href: link},
		Id:          link,
		Description: post.Excerpt,
		Content:     post.Content,
		Created:     post.CreatedAt,
	}
	if post.Image != "" && !strings.HasPrefix(post.Image, "data:") {
		item.Enclosure = &feeds.Enclosure{Url: post.Image, Type: imageType(post.Image), Length: "0"}
	}
	return item
}

func imageType(src string) string {
	path := strings.ToLower(src)
	if u, err := url.Parse(src); err == nil {
		path = strings.ToLower(u.Path)
	}
	switch {
	case strings.HasSuffix(path, ".png"):
		return "image/png"
	case strings.HasSuffix(path, ".gif"):
		return "image/gif"
	case strings.HasSuffix(path, ".webp"):
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
