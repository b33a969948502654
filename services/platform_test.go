package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlatformMatcher(t *testing.T) {
	m := NewPlatformMatcher("TikTok.com", "www.instagram.com", "youtube.com")

	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.youtube.com/watch?v=1", true},
		{"https://m.youtube.com/shorts/1", true},
		{"http://youtu.be/abc", true},
		{"youtube.com/watch?v=1", true},
		{"https://X.COM/user/status/1", true},
		{"https://www.tiktok.com/@user/video/1", true},
		{"https://instagram.com/p/abc", true},
		{"https://netflix.com/title/1", false},
		{"https://notyoutube.com/watch", false},
		{"https://cdn.example.com/youtube.com.png", false},
		{"https://example.com/r?u=youtube.com", false},
		{"https://youtube.com.evil.example/watch", false},
		{"https://example.com/image.jpg", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, m.IsPlatformLink(tt.url))
		})
	}
}

func TestPlatformMatcherDeduplicatesDomains(t *testing.T) {
	m := NewPlatformMatcher("youtube.com", "YOUTU.BE", "")
	assert.Equal(t, DefaultPlatformDomains, m.Domains())
}

func TestPlatformMatcherUnicodeHost(t *testing.T) {
	m := NewPlatformMatcher("bücher.example")
	assert.True(t, m.IsPlatformLink("https://xn--bcher-kva.example/item"))
	assert.True(t, m.IsPlatformLink("https://bücher.example/item"))
}
