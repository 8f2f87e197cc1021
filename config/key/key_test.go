// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package key

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChain_Key(t *testing.T) {
	testCases := []struct {
		Name  string
		Chain Chain
		Key   string
	}{
		{
			Name:  "empty chain",
			Chain: Chain{},
			Key:   "",
		},
		{
			Name:  "single name",
			Chain: Chain{Name("bootstrap")},
			Key:   "bootstrap",
		},
		{
			Name:  "nested names",
			Chain: Chain{Name("bootstrap"), Name("rootPath")},
			Key:   "bootstrap.rootPath",
		},
		{
			Name:  "chain of chains",
			Chain: Chain{Name("http"), Chain{Name("server"), Name("readTimeout")}},
			Key:   "http.server.readTimeout",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Name, func(t *testing.T) {
			assert.Equal(t, testCase.Key, testCase.Chain.Key())
		})
	}
}

func TestParse(t *testing.T) {
	t.Run("will return a nil chain", func(t *testing.T) {
		t.Run("if the name is empty", func(t *testing.T) {
			assert.Nil(t, Parse(""))
		})
	})

	t.Run("will round trip", func(t *testing.T) {
		t.Run("a dotted name", func(t *testing.T) {
			chain := Parse("bootstrap.sslClientAuthentication")
			if !assert.Len(t, chain, 2) {
				return
			}
			assert.Equal(t, "bootstrap.sslClientAuthentication", chain.Key())
		})
	})
}
