package main

import (
	"fmt"

	"github.com/joshuapare/onekit/pkg/onenote"
	"github.com/joshuapare/onekit/store"
)

// openDocument opens path and returns it alongside the root object space's
// default-context revision, the shape every command that walks the content
// tree needs.
func openDocument(path string) (*onenote.Document, *store.Revision, error) {
	doc, err := onenote.Open(path)
	if err != nil {
		return nil, nil, err
	}

	gosid := doc.RootObjectSpaceID()
	space, ok := doc.ObjectSpace(gosid)
	if !ok {
		_ = doc.Close()
		return nil, nil, fmt.Errorf("onectl: root object space %s not decoded", gosid)
	}

	rid, err := space.DefaultContextRid()
	if err != nil {
		_ = doc.Close()
		return nil, nil, fmt.Errorf("onectl: %w", err)
	}
	rev, ok := space.Revisions[rid]
	if !ok {
		_ = doc.Close()
		return nil, nil, fmt.Errorf("onectl: default revision %s not present in root object space", rid)
	}
	return doc, rev, nil
}
