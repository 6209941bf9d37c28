package media

import "strings"

// SelectAudioFormat picks the best audio-only stream, falling back to any
// stream carrying audio when no audio-only stream exists.
func SelectAudioFormat(formats []Format) (Format, bool) {
	candidates := make([]Format, 0, len(formats))
	for _, f := range formats {
		if f.URL == "" {
			continue
		}
		if f.HasAudio && !f.HasVideo {
			candidates = append(candidates, f)
		}
	}
	if len(candidates) == 0 {
		for _, f := range formats {
			if f.URL != "" && f.HasAudio {
				candidates = append(candidates, f)
			}
		}
	}
	if len(candidates) == 0 {
		return Format{}, false
	}

	best := candidates[0]
	for _, f := range candidates[1:] {
		si, sj := scoreAudioFormat(f), scoreAudioFormat(best)
		if si > sj || (si == sj && f.Bitrate > best.Bitrate) {
			best = f
		}
	}
	return best, true
}

// scoreAudioFormat ranks audio streams by container, transport, and bitrate.
// Progressive HTTPS m4a/webm transfers beat HLS/DASH segments.
func scoreAudioFormat(f Format) int {
	score := 0
	switch strings.ToLower(f.Ext) {
	case "m4a":
		score += 100
	case "webm":
		score += 90
	case "ogg", "opus":
		score += 85
	case "mp4":
		score += 70
	default:
		score += 60
	}

	p := strings.ToLower(f.Protocol)
	switch {
	case strings.HasPrefix(p, "https"):
		score += 30
	case strings.HasPrefix(p, "http"):
		score += 25
	case strings.Contains(p, "m3u8") || strings.Contains(p, "hls"):
		score += 20
	case strings.Contains(p, "dash"):
		score += 15
	}

	score += f.Bitrate
	return score
}

// SelectVideoFormat picks a video stream for the requested height ceiling.
//
// Policy: the closest available height not exceeding maxHeight; if every
// available stream is taller, the lowest one above the ceiling. maxHeight 0
// means best available.
func SelectVideoFormat(formats []Format, maxHeight int) (Format, bool) {
	var below, above Format
	var hasBelow, hasAbove bool

	for _, f := range formats {
		if !f.HasVideo || f.Height <= 0 {
			continue
		}
		if maxHeight <= 0 || f.Height <= maxHeight {
			if !hasBelow || betterVideo(f, below) {
				below = f
				hasBelow = true
			}
			continue
		}
		if !hasAbove || lowerVideo(f, above) {
			above = f
			hasAbove = true
		}
	}

	if hasBelow {
		return below, true
	}
	if hasAbove {
		return above, true
	}
	return Format{}, false
}

// betterVideo prefers taller, then wider, then higher-fps, then higher-bitrate streams
func betterVideo(a, b Format) bool {
	return compareKeys(
		[]int{a.Height, a.Width, a.FPS, a.Bitrate},
		[]int{b.Height, b.Width, b.FPS, b.Bitrate},
	)
}

// lowerVideo prefers shorter streams; among equal heights the richer one wins
func lowerVideo(a, b Format) bool {
	if a.Height != b.Height {
		return a.Height < b.Height
	}
	return betterVideo(a, b)
}

func compareKeys(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] == b[i] {
			continue
		}
		return a[i] > b[i]
	}
	return false
}
