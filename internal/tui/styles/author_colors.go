package styles

import (
	"hash/fnv"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// AuthorColorPalette is an ANSI-256 palette for stable author colors.
// Red and green slots are left out; they read as status colors.
var AuthorColorPalette = []string{
	"33", "39", "45", "69", "75", "81", "87", "99",
	"111", "117", "123", "147", "153", "159", "183", "189",
}

// AuthorColorMapper resolves deterministic per-author styles and caches them.
type AuthorColorMapper struct {
	palette []string

	mu         sync.RWMutex
	fgCache    map[string]lipgloss.Style
	badgeCache map[string]lipgloss.Style
}

// NewAuthorColorMapper returns a mapper over palette, AuthorColorPalette
// when empty.
func NewAuthorColorMapper(palette []string) *AuthorColorMapper {
	if len(palette) == 0 {
		palette = AuthorColorPalette
	}
	return &AuthorColorMapper{
		palette:    append([]string(nil), palette...),
		fgCache:    make(map[string]lipgloss.Style, 16),
		badgeCache: make(map[string]lipgloss.Style, 16),
	}
}

// Foreground returns the bold name style of an author.
func (m *AuthorColorMapper) Foreground(author string) lipgloss.Style {
	key := normalizeAuthor(author)

	m.mu.RLock()
	if style, ok := m.fgCache[key]; ok {
		m.mu.RUnlock()
		return style
	}
	m.mu.RUnlock()

	style := lipgloss.NewStyle().Foreground(color(m.ColorCode(key))).Bold(true)

	m.mu.Lock()
	m.fgCache[key] = style
	m.mu.Unlock()
	return style
}

// Badge returns the userpic style of an author: a filled cell with a
// readable initial.
func (m *AuthorColorMapper) Badge(author string) lipgloss.Style {
	key := normalizeAuthor(author)

	m.mu.RLock()
	if style, ok := m.badgeCache[key]; ok {
		m.mu.RUnlock()
		return style
	}
	m.mu.RUnlock()

	code := m.ColorCode(key)
	style := lipgloss.NewStyle().
		Foreground(color(contrastingTextColor(code))).
		Background(color(code)).
		Bold(true)

	m.mu.Lock()
	m.badgeCache[key] = style
	m.mu.Unlock()
	return style
}

// ColorCode returns the ANSI-256 color code selected for author.
func (m *AuthorColorMapper) ColorCode(author string) string {
	return m.palette[hashToPalette(normalizeAuthor(author), len(m.palette))]
}

func normalizeAuthor(author string) string {
	normalized := strings.ToLower(strings.TrimSpace(author))
	if normalized == "" {
		return "unknown"
	}
	return normalized
}

func hashToPalette(key string, n int) int {
	if n == 0 {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(n))
}

func contrastingTextColor(code string) string {
	index, err := strconv.Atoi(code)
	if err != nil {
		return "231"
	}
	r, g, b := ansi256ToRGB(index)
	if (299*r+587*g+114*b)/1000 >= 150 {
		return "16"
	}
	return "231"
}

func ansi256ToRGB(index int) (int, int, int) {
	switch {
	case index < 0 || index > 255:
		return 255, 255, 255
	case index < 16:
		table := [16][3]int{
			{0, 0, 0}, {128, 0, 0}, {0, 128, 0}, {128, 128, 0},
			{0, 0, 128}, {128, 0, 128}, {0, 128, 128}, {192, 192, 192},
			{128, 128, 128}, {255, 0, 0}, {0, 255, 0}, {255, 255, 0},
			{0, 0, 255}, {255, 0, 255}, {0, 255, 255}, {255, 255, 255},
		}
		return table[index][0], table[index][1], table[index][2]
	case index <= 231:
		cube := index - 16
		return channelValue(cube / 36), channelValue((cube / 6) % 6), channelValue(cube % 6)
	default:
		gray := 8 + (index-232)*10
		return gray, gray, gray
	}
}

func channelValue(v int) int {
	if v == 0 {
		return 0
	}
	return 55 + v*40
}
