package threatpath

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elchacal801/flame-fraud/internal/core/ft3"
)

const tpDoc = "# TP-0001: Account Takeover via Vishing\n\n" +
	"```yaml\n" +
	"---\n" +
	"id: TP-0001\n" +
	"title: \"Account Takeover via Vishing\"\n" +
	"cfpf_phases: [P1, P2, P3]\n" +
	"groupib_stages:\n" +
	"  - Reconnaissance\n" +
	"  - Trust Abuse\n" +
	"fraud_types: [account-takeover, vishing]\n" +
	"ft3_tactics: []  # pending review\n" +
	"---\n" +
	"```\n\n" +
	"## Narrative\n\n" +
	"ft3_tactics: [] appears here in prose too.\n"

func writeTP(t *testing.T, root, name, content string) string {
	t.Helper()
	dir := filepath.Join(root, Dir)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestStore_List(t *testing.T) {
	root := t.TempDir()
	writeTP(t, root, "TP-0002.md", tpDoc)
	writeTP(t, root, "TP-0001.md", tpDoc)
	writeTP(t, root, "README.md", "# index")

	paths, err := NewStore(root).List()
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, "TP-0001.md", filepath.Base(paths[0]))
	assert.Equal(t, "TP-0002.md", filepath.Base(paths[1]))
}

func TestStore_Load(t *testing.T) {
	root := t.TempDir()
	path := writeTP(t, root, "TP-0001.md", tpDoc)

	tp, err := NewStore(root).Load(path)
	require.NoError(t, err)
	assert.Equal(t, "TP-0001", tp.ID)
	assert.Equal(t, []string{"P1", "P2", "P3"}, tp.CFPFPhases)
	assert.Equal(t, []string{"Reconnaissance", "Trust Abuse"}, tp.GroupIBStages)
	assert.Equal(t, []string{"account-takeover", "vishing"}, tp.FraudTypes)
	assert.Empty(t, tp.FT3Tactics)
}

func TestParse(t *testing.T) {
	t.Run("id falls back to file stem", func(t *testing.T) {
		tp, err := Parse("```yml\n---\ntitle: x\nfraud_types: phishing\n---\n```\n", "TP-0042")
		require.NoError(t, err)
		assert.Equal(t, "TP-0042", tp.ID)
		assert.Empty(t, tp.FraudTypes)
	})

	t.Run("numeric id", func(t *testing.T) {
		tp, err := Parse("```yaml\n---\nid: 7\n---\n```", "TP-0007")
		require.NoError(t, err)
		assert.Equal(t, "7", tp.ID)
	})

	t.Run("no block", func(t *testing.T) {
		_, err := Parse("---\nid: TP-0001\n---\n", "TP-0001")
		assert.True(t, errors.Is(err, ErrNoFrontmatter))
	})

	t.Run("not a mapping", func(t *testing.T) {
		_, err := Parse("```yaml\n---\n- a\n- b\n---\n```", "TP-0001")
		assert.True(t, errors.Is(err, ErrInvalidFrontmatter))
	})

	t.Run("syntax error", func(t *testing.T) {
		_, err := Parse("```yaml\n---\nid: [unclosed\n---\n```", "TP-0001")
		assert.True(t, errors.Is(err, ErrInvalidFrontmatter))
	})
}

func TestStore_ApplyFT3Tactics(t *testing.T) {
	root := t.TempDir()
	path := writeTP(t, root, "TP-0001.md", tpDoc)
	store := NewStore(root)

	require.NoError(t, store.ApplyFT3Tactics(path, []string{"FTA001", "FTA003"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "ft3_tactics: [\"FTA001\", \"FTA003\"]  # pending review\n---\n")
	// prose after the header is untouched
	assert.Contains(t, text, "ft3_tactics: [] appears here in prose too.\n")

	tp, err := store.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"FTA001", "FTA003"}, tp.FT3Tactics)

	// second apply is a no-op
	require.NoError(t, store.ApplyFT3Tactics(path, []string{"FTA001", "FTA003"}))
	again, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, text, string(again))
}

func TestStore_ApplyFT3Tactics_BlockAtEndOfHeader(t *testing.T) {
	root := t.TempDir()
	doc := "```yaml\n---\nid: TP-0003\nft3_tactics:\n  - FTA009\n---\n```\n"
	path := writeTP(t, root, "TP-0003.md", doc)

	require.NoError(t, NewStore(root).ApplyFT3Tactics(path, []string{"FTA010"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "```yaml\n---\nid: TP-0003\nft3_tactics: [\"FTA010\"]\n---\n```\n", string(data))
}

func TestStore_ApplyFT3Tactics_FieldMissing(t *testing.T) {
	root := t.TempDir()
	doc := "```yaml\n---\nid: TP-0004\n---\n```\n\nft3_tactics: []\n"
	path := writeTP(t, root, "TP-0004.md", doc)

	err := NewStore(root).ApplyFT3Tactics(path, []string{"FTA001"})
	assert.True(t, errors.Is(err, ft3.ErrFieldNotFound))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, doc, string(data))
}

func TestStore_ApplyFT3Tactics_CommentInsideBlock(t *testing.T) {
	root := t.TempDir()
	doc := "```yaml\n---\nid: TP-0005\nft3_tactics:\n  # pending review\n  - FTA001\n\n  - FTA002\nfraud_types: [phishing]\n---\n```\n"
	path := writeTP(t, root, "TP-0005.md", doc)

	require.NoError(t, NewStore(root).ApplyFT3Tactics(path, []string{"FTA003"}))

	tp, err := NewStore(root).Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"FTA003"}, tp.FT3Tactics)
	assert.Equal(t, []string{"phishing"}, tp.FraudTypes)
}

func TestStore_ApplyFT3Tactics_RefusesUnreadableResult(t *testing.T) {
	root := t.TempDir()
	// items that are mappings leave their continuation lines behind
	doc := "```yaml\n---\nid: TP-0006\nft3_tactics:\n  - id: FTA001\n    note: reviewed\n---\n```\n"
	path := writeTP(t, root, "TP-0006.md", doc)

	err := NewStore(root).ApplyFT3Tactics(path, []string{"FTA003"})
	assert.True(t, errors.Is(err, ErrUnsafePatch))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, doc, string(data))
}

func TestVerifyTactics(t *testing.T) {
	tests := []struct {
		name    string
		patched string
		ids     []string
		wantErr bool
	}{
		{"matches", "id: TP-1\nft3_tactics: [\"FTA001\", \"FTA002\"]\n", []string{"FTA001", "FTA002"}, false},
		{"empty matches nil", "ft3_tactics: []\n", nil, false},
		{"different ids", "ft3_tactics: [FTA009]\n", []string{"FTA001"}, true},
		{"extra id", "ft3_tactics: [FTA001, FTA002]\n", []string{"FTA001"}, true},
		{"not yaml", "ft3_tactics: [\"FTA001\"\n", []string{"FTA001"}, true},
		{"not a mapping", "- FTA001\n", []string{"FTA001"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := verifyTactics(tt.patched, tt.ids)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrUnsafePatch))
				return
			}
			assert.NoError(t, err)
		})
	}
}
