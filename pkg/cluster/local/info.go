package local

import (
	"context"
	"crypto/sha1" //nolint:gosec // udf-list reports SHA-1 content hashes
	"encoding/hex"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/ajitpratap0/kvbridge/pkg/cluster"
	"github.com/ajitpratap0/kvbridge/pkg/policy"
)

// Info answers a command from a random node.
func (c *Cluster) Info(ctx context.Context, p *policy.Info, command string) (cluster.InfoResult, error) {
	if err := c.ready(ctx); err != nil {
		return cluster.InfoResult{}, err
	}
	node := c.nodes[rand.Intn(len(c.nodes))] //nolint:gosec // node choice only
	resp, err := c.infoResponse(node, command)
	return cluster.InfoResult{Node: node, Response: resp, Err: err}, nil
}

// InfoAll answers a command from every node.
func (c *Cluster) InfoAll(ctx context.Context, p *policy.Info, command string) ([]cluster.InfoResult, error) {
	if err := c.ready(ctx); err != nil {
		return nil, err
	}
	out := make([]cluster.InfoResult, len(c.nodes))
	for i, node := range c.nodes {
		resp, err := c.infoResponse(node, command)
		out[i] = cluster.InfoResult{Node: node, Response: resp, Err: err}
	}
	return out, nil
}

func (c *Cluster) infoResponse(node, command string) (string, error) {
	name, arg, _ := strings.Cut(strings.TrimSpace(command), "/")
	switch name {
	case "node":
		return node, nil
	case "build":
		return Build, nil
	case "namespaces":
		names, err := c.namespaceNames()
		return strings.Join(names, ";"), err
	case "sets":
		return c.infoSets(arg)
	case "statistics":
		return c.infoStatistics()
	case "sindex", "sindex-list":
		return c.infoIndexes(arg), nil
	case "udf-list":
		return c.infoUDFs(), nil
	}
	return "ERROR::unrecognized command " + name, nil
}

func (c *Cluster) namespaceNames() ([]string, error) {
	if c.namespaces != nil {
		out := make([]string, 0, len(c.namespaces))
		for ns := range c.namespaces {
			out = append(out, ns)
		}
		sort.Strings(out)
		return out, nil
	}
	names, err := c.store.Namespaces()
	if err != nil {
		return nil, storeErr(err)
	}
	return names, nil
}

func (c *Cluster) infoSets(namespace string) (string, error) {
	names := []string{namespace}
	if namespace == "" {
		var err error
		if names, err = c.namespaceNames(); err != nil {
			return "", err
		}
	}
	now := c.now()
	var parts []string
	for _, ns := range names {
		counts := map[string]int{}
		err := c.store.Scan(ns, func(rec *StoredRecord) bool {
			if !rec.expired(now) {
				counts[rec.Set]++
			}
			return true
		})
		if err != nil {
			return "", storeErr(err)
		}
		sets := make([]string, 0, len(counts))
		for set := range counts {
			sets = append(sets, set)
		}
		sort.Strings(sets)
		for _, set := range sets {
			parts = append(parts, fmt.Sprintf("ns=%s:set=%s:objects=%d", ns, set, counts[set]))
		}
	}
	return strings.Join(parts, ";"), nil
}

func (c *Cluster) infoStatistics() (string, error) {
	names, err := c.namespaceNames()
	if err != nil {
		return "", err
	}
	now := c.now()
	objects := 0
	for _, ns := range names {
		err := c.store.Scan(ns, func(rec *StoredRecord) bool {
			if !rec.expired(now) {
				objects++
			}
			return true
		})
		if err != nil {
			return "", storeErr(err)
		}
	}
	c.metaMu.RLock()
	defer c.metaMu.RUnlock()
	return fmt.Sprintf("objects=%d;namespaces=%d;sindex=%d;udfs=%d;users=%d",
		objects, len(names), len(c.indexes), len(c.udfs), len(c.users)), nil
}

func (c *Cluster) infoIndexes(namespace string) string {
	var parts []string
	for _, idx := range c.sortedIndexes() {
		if namespace != "" && idx.Namespace != namespace {
			continue
		}
		parts = append(parts, fmt.Sprintf("ns=%s:indexname=%s:set=%s:bin=%s:type=%s:state=RW",
			idx.Namespace, idx.Name, idx.Set, idx.Bin, idx.Type))
	}
	return strings.Join(parts, ";")
}

func (c *Cluster) infoUDFs() string {
	c.metaMu.RLock()
	defer c.metaMu.RUnlock()

	paths := make([]string, 0, len(c.udfs))
	for path := range c.udfs {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	parts := make([]string, len(paths))
	for i, path := range paths {
		sum := sha1.Sum(c.udfs[path]) //nolint:gosec // content hash only
		parts[i] = fmt.Sprintf("filename=%s,hash=%s,type=LUA", path, hex.EncodeToString(sum[:]))
	}
	return strings.Join(parts, ";")
}
