// Package manifest records what a build produced: every page with its source
// document and every copied asset, each with a content hash.
package manifest

import (
	"cmp"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/zeebo/blake3"
)

// FileName is the manifest's name in the output root.
const FileName = "_manifest.json"

// Manifest is the serialized record of one build.
type Manifest struct {
	BuildID   string       `json:"build_id"`
	Generated time.Time    `json:"generated"`
	Pages     []PageEntry  `json:"pages"`
	Assets    []AssetEntry `json:"assets"`
}

// PageEntry describes a rendered page.
type PageEntry struct {
	Link   string `json:"link"`
	Kind   string `json:"kind"`
	Source string `json:"source,omitempty"`
	Hash   string `json:"hash"`
}

// AssetEntry describes a copied asset.
type AssetEntry struct {
	Path string `json:"path"`
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

// New creates an empty manifest.
func New(buildID string, generated time.Time) *Manifest {
	return &Manifest{
		BuildID:   buildID,
		Generated: generated.UTC(),
		Pages:     []PageEntry{},
		Assets:    []AssetEntry{},
	}
}

// Hash returns the hex BLAKE3-256 digest of data.
func Hash(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// AddPage records a rendered page.
func (m *Manifest) AddPage(link, kind, source string, content []byte) {
	m.Pages = append(m.Pages, PageEntry{Link: link, Kind: kind, Source: source, Hash: Hash(content)})
}

// AddAsset records a copied asset.
func (m *Manifest) AddAsset(path string, content []byte) {
	m.Assets = append(m.Assets, AssetEntry{Path: path, Hash: Hash(content), Size: int64(len(content))})
}

// Sort orders pages by link and assets by path.
func (m *Manifest) Sort() {
	slices.SortFunc(m.Pages, func(a, b PageEntry) int { return cmp.Compare(a.Link, b.Link) })
	slices.SortFunc(m.Assets, func(a, b AssetEntry) int { return cmp.Compare(a.Path, b.Path) })
}

// ToJSON sorts the entries and serializes the manifest.
func (m *Manifest) ToJSON() ([]byte, error) {
	m.Sort()
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return append(data, '\n'), nil
}

// FromJSON deserializes a manifest from JSON.
func FromJSON(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return &m, nil
}
