package onenote

import (
	"encoding/binary"
	"fmt"
	"sort"
	"time"
	"unicode/utf16"

	"github.com/joshuapare/onekit/pkg/types"
	"github.com/joshuapare/onekit/store"
)

// Snapshot is one whole-notebook state at a point in time: the revision a
// section's page/object-space graph was at when it was last modified at or
// before the snapshot's timestamp (§4.N).
type Snapshot struct {
	// Directory maps each page's persistent NotebookManagementEntityGuid,
	// in its string form, to the revision chosen for it at this snapshot.
	// Two pages that share a persistent GUID within the same snapshot are
	// disambiguated by appending "-1", "-2", … to every occurrence after
	// the first, in the order their object spaces were collected (§4.N).
	Directory map[string]store.ExtendedGUID

	CreatedTimeStamp      time.Time
	LastModifiedTimeStamp time.Time
	Author                string
}

// pageTimeline is one page object space's per-revision last-modified time,
// collected before the union/collapse pass.
type pageTimeline struct {
	pageGUID store.GUID
	entries  []timelineEntry
}

type timelineEntry struct {
	rid    store.ExtendedGUID
	ts     time.Time
	author string
}

// BuildVersionHistory computes the ordered snapshot sequence for a section
// file's root object space (§4.N).
func BuildVersionHistory(file *store.OneStoreFile) ([]Snapshot, error) {
	root, ok := file.ObjectSpaces[file.RootObjectSpaceID]
	if !ok {
		return nil, fmt.Errorf("version history: %w: root object space missing", store.ErrObjectNotFound)
	}
	rid, err := root.DefaultContextRid()
	if err != nil {
		return nil, fmt.Errorf("version history: %w", err)
	}
	rev, ok := root.Revisions[rid]
	if !ok {
		return nil, fmt.Errorf("version history: %w: default revision missing", store.ErrObjectNotFound)
	}

	contentOID, ok := rev.RootObjects[uint32(types.RoleContents)]
	if !ok {
		return nil, fmt.Errorf("version history: %w: no contents root", store.ErrObjectNotFound)
	}
	contentObj, ok := rev.Objects[contentOID]
	if !ok {
		return nil, fmt.Errorf("version history: %w: contents root %s", store.ErrObjectNotFound, contentOID)
	}

	pageOSIDs, err := collectPageObjectSpaces(rev, contentObj)
	if err != nil {
		return nil, err
	}

	timelines := make([]pageTimeline, 0, len(pageOSIDs))
	for _, osid := range pageOSIDs {
		space, ok := file.ObjectSpaces[osid]
		if !ok {
			continue
		}
		tl, err := buildPageTimeline(space)
		if err != nil {
			return nil, err
		}
		timelines = append(timelines, tl)
	}

	return collapseSnapshots(timelines), nil
}

// collectPageObjectSpaces walks the contents root's ElementChildNodes/
// ContentChildNodes looking for PageSeries objects, then reads each
// series's ChildGraphSpaceElementNodes (§4.N step 1).
func collectPageObjectSpaces(rev *store.Revision, root store.GroupObject) ([]store.ExtendedGUID, error) {
	var osids []store.ExtendedGUID
	childIDs := childObjectIDs(root)
	for _, cid := range childIDs {
		if root.ResolveOID == nil {
			continue
		}
		childOID, err := root.ResolveOID(cid)
		if err != nil {
			return nil, fmt.Errorf("version history: resolving child: %w", err)
		}
		child, ok := rev.Objects[childOID]
		if !ok || KnownJCID(child.JCID) != JCIDPageSeriesNode {
			continue
		}
		p, ok := propertyOf(child, PropertyChildGraphSpaceElementNodes)
		if !ok || child.ResolveOID == nil {
			continue
		}
		for _, sid := range p.SpaceIDs {
			osid, err := child.ResolveOID(sid)
			if err != nil {
				return nil, fmt.Errorf("version history: resolving page object space: %w", err)
			}
			osids = append(osids, osid)
		}
	}
	return osids, nil
}

// childObjectIDs returns the ObjectIDs held by whichever child-nodes
// property applies to obj's JCID (ElementChildNodes or ContentChildNodes),
// falling back to checking both if the JCID isn't one this package names.
func childObjectIDs(obj store.GroupObject) []store.CompactID {
	if prop, ok := propertyOf(obj, PropertyElementChildNodes); ok {
		return prop.ObjectIDs
	}
	if prop, ok := propertyOf(obj, PropertyContentChildNodes); ok {
		return prop.ObjectIDs
	}
	return nil
}

func propertyOf(obj store.GroupObject, id PropertyID) (store.Property, bool) {
	for _, p := range obj.PropertySet.Properties {
		if p.Header.PropertyID == uint32(id) {
			return p, true
		}
	}
	return store.Property{}, false
}

// buildPageTimeline collects one page object space's per-revision
// lastModifiedTimeStamp and the page's persistent guid (§4.N step 2).
func buildPageTimeline(space *store.ObjectSpace) (pageTimeline, error) {
	tl := pageTimeline{}
	for _, rid := range space.Order {
		rev, ok := space.Revisions[rid]
		if !ok {
			continue
		}
		ts, author, ok := revisionTimestamp(rev)
		if !ok {
			continue
		}
		tl.entries = append(tl.entries, timelineEntry{rid: rid, ts: ts, author: author})
		if tl.pageGUID.IsZero() {
			if guid, ok := pagePersistentGUID(rev); ok {
				tl.pageGUID = guid
			}
		}
	}
	sort.Slice(tl.entries, func(i, j int) bool { return tl.entries[i].ts.Before(tl.entries[j].ts) })
	return tl, nil
}

// revisionTimestamp resolves a page revision's lastModifiedTimeStamp from
// its RevisionMetaData root, falling back to the most recent
// TopologyCreationTimeStamp found by walking the contents root's child
// graph (§4.N step 2).
func revisionTimestamp(rev *store.Revision) (time.Time, string, bool) {
	if metaOID, ok := rev.RootObjects[uint32(types.RoleRevisionMetadata)]; ok {
		if meta, ok := rev.Objects[metaOID]; ok {
			ts, hasTS := filetimeProperty(meta, PropertyLastModifiedTimeStamp)
			author, _ := stringProperty(meta, PropertyAuthor)
			if hasTS {
				return ts, author, true
			}
		}
	}
	if contentOID, ok := rev.RootObjects[uint32(types.RoleContents)]; ok {
		if latest, ok := mostRecentTopologyTimestamp(rev, contentOID, make(map[store.ExtendedGUID]bool)); ok {
			return latest, "", true
		}
	}
	return time.Time{}, "", false
}

func mostRecentTopologyTimestamp(rev *store.Revision, oid store.ExtendedGUID, visited map[store.ExtendedGUID]bool) (time.Time, bool) {
	if visited[oid] {
		return time.Time{}, false
	}
	visited[oid] = true
	obj, ok := rev.Objects[oid]
	if !ok {
		return time.Time{}, false
	}

	best, found := time.Time{}, false
	if ts, ok := filetimeProperty(obj, PropertyTopologyCreationTimeStamp); ok {
		best, found = ts, true
	}
	for _, cid := range childObjectIDs(obj) {
		if obj.ResolveOID == nil {
			continue
		}
		childOID, err := obj.ResolveOID(cid)
		if err != nil {
			continue
		}
		if ts, ok := mostRecentTopologyTimestamp(rev, childOID, visited); ok {
			if !found || ts.After(best) {
				best, found = ts, true
			}
		}
	}
	return best, found
}

func pagePersistentGUID(rev *store.Revision) (store.GUID, bool) {
	metaOID, ok := rev.RootObjects[uint32(types.RolePageMetadata)]
	if !ok {
		return store.GUID{}, false
	}
	meta, ok := rev.Objects[metaOID]
	if !ok {
		return store.GUID{}, false
	}
	p, ok := propertyOf(meta, PropertyNotebookManagementEntityGuid)
	if !ok || len(p.Raw) < 16 {
		return store.GUID{}, false
	}
	guid, err := store.ParseGUID(p.Raw)
	if err != nil {
		return store.GUID{}, false
	}
	return guid, true
}

func filetimeProperty(obj store.GroupObject, id PropertyID) (time.Time, bool) {
	p, ok := propertyOf(obj, id)
	if !ok || len(p.Raw) < 8 {
		return time.Time{}, false
	}
	return store.FiletimeToTime(binary.LittleEndian.Uint64(p.Raw)), true
}

func stringProperty(obj store.GroupObject, id PropertyID) (string, bool) {
	p, ok := propertyOf(obj, id)
	if !ok {
		return "", false
	}
	units := make([]uint16, len(p.Raw)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(p.Raw[i*2 : i*2+2])
	}
	return string(utf16.Decode(units)), true
}

// collapseSnapshots forms the union of all pages' timestamps, computes a
// directory for each via upper-bound search, and collapses consecutive
// identical directories per §4.N steps 3-5.
func collapseSnapshots(timelines []pageTimeline) []Snapshot {
	seen := make(map[int64]bool)
	var allTimes []time.Time
	for _, tl := range timelines {
		for _, e := range tl.entries {
			if !seen[e.ts.UnixNano()] {
				seen[e.ts.UnixNano()] = true
				allTimes = append(allTimes, e.ts)
			}
		}
	}
	sort.Slice(allTimes, func(i, j int) bool { return allTimes[i].Before(allTimes[j]) })

	var out []Snapshot
	for _, t := range allTimes {
		dir := make(map[string]store.ExtendedGUID)
		seenGUIDs := make(map[store.GUID]int)
		var author string
		for _, tl := range timelines {
			var chosen *timelineEntry
			for i := range tl.entries {
				if tl.entries[i].ts.After(t) {
					break
				}
				chosen = &tl.entries[i]
			}
			if chosen == nil || tl.pageGUID.IsZero() {
				continue
			}
			key := tl.pageGUID.String()
			if n := seenGUIDs[tl.pageGUID]; n > 0 {
				key = fmt.Sprintf("%s-%d", key, n)
			}
			seenGUIDs[tl.pageGUID]++
			dir[key] = chosen.rid
			if chosen.ts.Equal(t) && chosen.author != "" {
				author = chosen.author
			}
		}

		if len(out) > 0 && sameDirectory(out[len(out)-1].Directory, dir) &&
			out[len(out)-1].Author == author {
			out[len(out)-1].LastModifiedTimeStamp = t
			continue
		}
		out = append(out, Snapshot{
			Directory:             dir,
			CreatedTimeStamp:      t,
			LastModifiedTimeStamp: t,
			Author:                author,
		})
	}
	return out
}

func sameDirectory(a, b map[string]store.ExtendedGUID) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
