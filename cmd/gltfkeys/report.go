package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Carmen-Shannon/oxy-cachekey/engine/dedup"
)

type keyReport struct {
	Key   string     `json:"key"`
	Kind  dedup.Kind `json:"kind"`
	Users []string   `json:"users"`
}

// samplerReport describes one GPU sampler in the terms a wgpu backend creates it with.
type samplerReport struct {
	Key          string   `json:"key"`
	Users        []string `json:"users"`
	AddressModeU string   `json:"addressModeU"`
	AddressModeV string   `json:"addressModeV"`
	MagFilter    string   `json:"magFilter"`
	MinFilter    string   `json:"minFilter"`
	MipmapFilter string   `json:"mipmapFilter"`
}

type report struct {
	Keys     []keyReport     `json:"keys"`
	Samplers []samplerReport `json:"samplers"`
	Stats    dedup.Stats     `json:"stats"`
}

func newReport(inv *dedup.Inventory, sharedOnly bool) report {
	keys := inv.Keys()
	if sharedOnly {
		keys = inv.Shared()
	}

	r := report{Keys: make([]keyReport, 0, len(keys)), Stats: inv.Stats()}
	for _, key := range keys {
		kind, _ := inv.Kind(key)
		r.Keys = append(r.Keys, keyReport{Key: key, Kind: kind, Users: inv.Uses(key)})
	}

	samplerKeys := inv.SamplerKeys()
	r.Samplers = make([]samplerReport, 0, len(samplerKeys))
	for _, key := range samplerKeys {
		s, users, ok := inv.Sampler(key)
		if !ok || (sharedOnly && len(users) < 2) {
			continue
		}
		d := s.SamplerDescriptor(key)
		r.Samplers = append(r.Samplers, samplerReport{
			Key:          d.Label,
			Users:        users,
			AddressModeU: d.AddressModeU.String(),
			AddressModeV: d.AddressModeV.String(),
			MagFilter:    d.MagFilter.String(),
			MinFilter:    d.MinFilter.String(),
			MipmapFilter: d.MipmapFilter.String(),
		})
	}
	return r
}

func writeReport(w io.Writer, format string, inv *dedup.Inventory, sharedOnly bool) error {
	r := newReport(inv, sharedOnly)
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tUSERS\tKEY")
	for _, k := range r.Keys {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", k.Kind, len(k.Users), k.Key)
	}
	for _, s := range r.Samplers {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", "sampler", len(s.Users), s.Key)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	s := r.Stats
	_, err := fmt.Fprintf(w, "\n%d files, %d keys, %d shared, %d references, %d samplers\n", s.Assets, s.Keys, s.SharedKeys, s.References, s.Samplers)
	return err
}
