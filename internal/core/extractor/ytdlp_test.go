package extractor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/vibestream/vibestream/internal/core/auth"
	"github.com/vibestream/vibestream/internal/core/media"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		want   error
	}{
		{
			name:   "Bot check is blocked",
			stderr: "ERROR: [youtube] abc: Sign in to confirm you're not a bot. Use --cookies for authentication",
			want:   media.ErrSourceBlocked,
		},
		{
			name:   "403 is blocked",
			stderr: "ERROR: unable to download video data: HTTP Error 403: Forbidden",
			want:   media.ErrSourceBlocked,
		},
		{
			name:   "Private video is blocked",
			stderr: "ERROR: [youtube] abc: Private video. Sign in if you've been granted access",
			want:   media.ErrSourceBlocked,
		},
		{
			name:   "Removed video is not found",
			stderr: "ERROR: [youtube] abc: Video unavailable. This video has been removed by the uploader",
			want:   media.ErrNotFound,
		},
		{
			name:   "404 is not found",
			stderr: "ERROR: unable to download webpage: HTTP Error 404: Not Found",
			want:   media.ErrNotFound,
		},
		{
			name:   "Unhandled site is unsupported",
			stderr: "ERROR: Unsupported URL: https://example.org/page",
			want:   media.ErrUnsupported,
		},
		{
			name:   "Anything else is unknown",
			stderr: "ERROR: something exploded",
			want:   media.ErrUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify(context.Background(), errors.New("exit status 1"), tt.stderr)
			if !errors.Is(err, tt.want) {
				t.Errorf("classify() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestClassifyDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	<-ctx.Done()

	err := classify(ctx, errors.New("signal: killed"), "")
	if !errors.Is(err, media.ErrTimeout) {
		t.Errorf("classify() = %v, want ErrTimeout", err)
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "Valid https", url: "https://example.com/watch?id=abc", wantErr: false},
		{name: "Valid http", url: "http://example.com/v/1", wantErr: false},
		{name: "Missing scheme", url: "example.com/watch", wantErr: true},
		{name: "Non-http scheme", url: "ftp://example.com/file", wantErr: true},
		{name: "Empty", url: "", wantErr: true},
		{name: "Garbage", url: "not a url at all", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateURL(%q) err = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, media.ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestMapInfoDuration(t *testing.T) {
	secs := func(v float64) *float64 { return &v }

	tests := []struct {
		name     string
		duration *float64
		want     string
	}{
		{name: "Omitted duration is unknown", duration: nil, want: "Unknown"},
		{name: "Zero duration renders", duration: secs(0), want: "0:00"},
		{name: "Normal duration renders", duration: secs(125), want: "2:05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := mapInfo(ytdlpInfo{Title: "t", Duration: tt.duration})
			if meta.DurationStr != tt.want {
				t.Errorf("DurationStr = %q, want %q", meta.DurationStr, tt.want)
			}
		})
	}
}

func TestAuthArgs(t *testing.T) {
	y := NewYTDLP("")

	if args := y.authArgs(auth.Context{Mode: auth.ModeAnonymous}); len(args) != 0 {
		t.Errorf("anonymous context added args: %v", args)
	}

	cookieArgs := y.authArgs(auth.Context{Mode: auth.ModeCookies, CookieFile: "/etc/jar.txt"})
	if len(cookieArgs) != 2 || cookieArgs[0] != "--cookies" || cookieArgs[1] != "/etc/jar.txt" {
		t.Errorf("cookie args = %v", cookieArgs)
	}

	mobileArgs := y.authArgs(auth.Context{Mode: auth.ModeMobile})
	joined := strings.Join(mobileArgs, " ")
	if !strings.Contains(joined, "player_client=mweb") || !strings.Contains(joined, "--user-agent") {
		t.Errorf("mobile args = %v", mobileArgs)
	}
}
