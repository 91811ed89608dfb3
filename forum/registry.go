package forum

import (
	"errors"
	"log"
	"slices"
	"sort"
	"sync"

	"news-forum-bot/utils"
)

// ChannelRef identifies a registered forum channel.
type ChannelRef struct {
	GuildID   string
	ChannelID string
}

// Registry maps guild IDs to the ordered, unique list of forum channels the
// bot publishes into. It is persisted as a JSON object on every change.
type Registry struct {
	path     string
	mutex    sync.RWMutex
	channels map[string][]string
}

// LoadRegistry reads the registry file at path. A missing or unreadable file
// yields an empty registry.
func LoadRegistry(path string) *Registry {
	r := &Registry{path: path, channels: make(map[string][]string)}

	var data map[string][]string
	if err := utils.LoadJSON(path, &data); err != nil {
		if !errors.Is(err, utils.ErrFileNotFound) {
			log.Printf("[registry] %v, starting with an empty registry", err)
		}
		return r
	}
	for guildID, ids := range data {
		for _, id := range ids {
			if id != "" && !slices.Contains(r.channels[guildID], id) {
				r.channels[guildID] = append(r.channels[guildID], id)
			}
		}
	}
	return r
}

// Snapshot returns every registered channel. Guilds are ordered by ID,
// channels keep their registration order.
func (r *Registry) Snapshot() []ChannelRef {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	guilds := make([]string, 0, len(r.channels))
	for guildID := range r.channels {
		guilds = append(guilds, guildID)
	}
	sort.Strings(guilds)

	var refs []ChannelRef
	for _, guildID := range guilds {
		for _, channelID := range r.channels[guildID] {
			refs = append(refs, ChannelRef{GuildID: guildID, ChannelID: channelID})
		}
	}
	return refs
}

// GuildChannels returns the channels registered for one guild.
func (r *Registry) GuildChannels(guildID string) []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return slices.Clone(r.channels[guildID])
}

// Add registers channelID for guildID. It reports false if it was already
// registered.
func (r *Registry) Add(guildID, channelID string) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if slices.Contains(r.channels[guildID], channelID) {
		return false
	}
	r.channels[guildID] = append(r.channels[guildID], channelID)
	return true
}

// Remove deregisters channelID. An empty guildID removes the channel from
// whichever guild lists it. It reports whether anything was removed.
func (r *Registry) Remove(guildID, channelID string) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	removed := false
	for gid, ids := range r.channels {
		if guildID != "" && gid != guildID {
			continue
		}
		idx := slices.Index(ids, channelID)
		if idx < 0 {
			continue
		}
		ids = slices.Delete(ids, idx, idx+1)
		if len(ids) == 0 {
			delete(r.channels, gid)
		} else {
			r.channels[gid] = ids
		}
		removed = true
	}
	return removed
}

// Save rewrites the registry file.
func (r *Registry) Save() error {
	r.mutex.RLock()
	data := make(map[string][]string, len(r.channels))
	for guildID, ids := range r.channels {
		data[guildID] = slices.Clone(ids)
	}
	r.mutex.RUnlock()

	return utils.SaveJSON(r.path, data)
}
