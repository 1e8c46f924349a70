package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igsaved/pkg/instagram"
	"igsaved/pkg/models"
)

func testPrompter(input string) (*prompter, *bytes.Buffer) {
	var out bytes.Buffer
	return newPrompter(strings.NewReader(input), &out), &out
}

func TestPrompterCollectionMenu(t *testing.T) {
	collections := []models.Collection{
		{ID: "111", Name: "Recipes", Count: 12},
		{ID: "222", Name: "", Count: 3},
	}

	p, out := testPrompter("abc\n7\n2\n")
	id, name, err := p.collection(collections)
	require.NoError(t, err)
	assert.Equal(t, "222", id)
	assert.Equal(t, "", name)

	text := out.String()
	assert.Contains(t, text, "0. All Saved Posts")
	assert.Contains(t, text, "1. Recipes (12 posts)")
	assert.Contains(t, text, "2. Unnamed (3 posts)")
	assert.Contains(t, text, "Please enter a valid number")
	assert.Contains(t, text, "Please enter 0-2")
}

func TestPrompterCollectionAll(t *testing.T) {
	p, _ := testPrompter("0\n")
	id, name, err := p.collection([]models.Collection{{ID: "1", Name: "x"}})
	require.NoError(t, err)
	assert.Equal(t, instagram.AllPostsCollection, id)
	assert.Equal(t, allPostsLabel, name)
}

func TestPrompterNoCollections(t *testing.T) {
	p, out := testPrompter("")
	id, _, err := p.collection(nil)
	require.NoError(t, err)
	assert.Equal(t, instagram.AllPostsCollection, id)
	assert.Contains(t, out.String(), "No collections found")
}

func TestPrompterCollectionInputClosed(t *testing.T) {
	p, _ := testPrompter("")
	_, _, err := p.collection([]models.Collection{{ID: "1"}})
	assert.ErrorIs(t, err, errPromptClosed)
}

func TestPrompterLimit(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"empty means all", "\n", 0},
		{"number", "25\n", 25},
		{"negative means all", "-3\n", 0},
		{"retry after garbage", "lots\n4\n", 4},
		{"last line without newline", "9", 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := testPrompter(tt.input)
			got, err := p.limit()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrompterConfirm(t *testing.T) {
	for input, want := range map[string]bool{
		"y\n":   true,
		"Yes\n": true,
		"n\n":   false,
		"\n":    false,
		"":      false,
	} {
		p, _ := testPrompter(input)
		assert.Equal(t, want, p.confirm("Archive?"), "input %q", input)
	}
}

func TestPrompterSessionID(t *testing.T) {
	p, out := testPrompter("  abc%3Adef  \n")
	id, err := p.sessionID()
	require.NoError(t, err)
	assert.Equal(t, "abc%3Adef", id)
	assert.Contains(t, out.String(), "Find 'sessionid'")

	p, _ = testPrompter("\n")
	_, err = p.sessionID()
	assert.Error(t, err)
}
