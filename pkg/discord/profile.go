package discord

import (
	"encoding/json"
	"net/url"
	"strconv"
	"time"
)

// Profile is a Discord user as returned by /users/@me, extended with the
// scope-gated lists and the token that loaded it.
type Profile struct {
	ID            string  `json:"id"`
	Username      string  `json:"username"`
	GlobalName    *string `json:"global_name"`
	Discriminator string  `json:"discriminator,omitempty"`
	Avatar        *string `json:"avatar"`
	Banner        *string `json:"banner,omitempty"`
	AccentColor   *int    `json:"accent_color,omitempty"`
	Locale        string  `json:"locale,omitempty"`
	MFAEnabled    bool    `json:"mfa_enabled,omitempty"`
	PremiumType   int     `json:"premium_type,omitempty"`
	Flags         int64   `json:"flags,omitempty"`
	PublicFlags   int64   `json:"public_flags,omitempty"`

	// Email and Verified are only sent when the email scope was granted.
	Email    *string `json:"email,omitempty"`
	Verified *bool   `json:"verified,omitempty"`

	Provider  string `json:"provider"`
	AvatarURL string `json:"avatar_url"`

	// Tokens are kept out of the JSON form so a marshalled Profile is safe
	// to store or render.
	AccessToken  string `json:"-"`
	RefreshToken string `json:"-"`

	// Nil when the scope was not configured or Discord answered null.
	Connections []Connection `json:"connections,omitempty"`
	Guilds      []Guild      `json:"guilds,omitempty"`

	FetchedAt time.Time `json:"fetched_at"`

	// Raw is the unmodified /users/@me body.
	Raw json.RawMessage `json:"-"`
}

// HasConnections reports whether the connections list was loaded.
func (p *Profile) HasConnections() bool { return p.Connections != nil }

// HasGuilds reports whether the guilds list was loaded.
func (p *Profile) HasGuilds() bool { return p.Guilds != nil }

// DisplayName is the global name when set, else the username.
func (p *Profile) DisplayName() string {
	if p.GlobalName != nil && *p.GlobalName != "" {
		return *p.GlobalName
	}
	return p.Username
}

// Connection is an account linked to the Discord user (Twitch, GitHub, ...).
// Raw holds the record exactly as Discord sent it, including fields that
// are not modelled here.
type Connection struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Verified     bool   `json:"verified"`
	Revoked      bool   `json:"revoked,omitempty"`
	FriendSync   bool   `json:"friend_sync"`
	ShowActivity bool   `json:"show_activity"`
	TwoWayLink   bool   `json:"two_way_link"`
	Visibility   int    `json:"visibility"`

	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON never fails on a field whose type differs from the model;
// such a field is left zero and survives in Raw.
func (c *Connection) UnmarshalJSON(b []byte) error {
	r := parseRecord(b)
	*c = Connection{
		ID:           r.str("id"),
		Name:         r.str("name"),
		Type:         r.str("type"),
		Verified:     r.boolean("verified"),
		Revoked:      r.boolean("revoked"),
		FriendSync:   r.boolean("friend_sync"),
		ShowActivity: r.boolean("show_activity"),
		TwoWayLink:   r.boolean("two_way_link"),
		Visibility:   int(r.integer("visibility")),
		Raw:          append(json.RawMessage(nil), b...),
	}
	return nil
}

// MarshalJSON writes Raw when present so stored profiles stay lossless.
func (c Connection) MarshalJSON() ([]byte, error) {
	if len(c.Raw) > 0 {
		return c.Raw, nil
	}
	type plain Connection
	return json.Marshal(plain(c))
}

// Guild is a partial guild from /users/@me/guilds. Permissions is the
// decimal bitset; unversioned API paths send it as a number, v10 as a
// string, and both end up here as a string.
type Guild struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Icon        *string  `json:"icon"`
	Banner      *string  `json:"banner,omitempty"`
	Owner       bool     `json:"owner"`
	Permissions string   `json:"permissions"`
	Features    []string `json:"features"`

	ApproximateMemberCount   int `json:"approximate_member_count,omitempty"`
	ApproximatePresenceCount int `json:"approximate_presence_count,omitempty"`

	Raw json.RawMessage `json:"-"`
}

func (g *Guild) UnmarshalJSON(b []byte) error {
	r := parseRecord(b)
	*g = Guild{
		ID:                       r.str("id"),
		Name:                     r.str("name"),
		Icon:                     r.optStr("icon"),
		Banner:                   r.optStr("banner"),
		Owner:                    r.boolean("owner"),
		Permissions:              r.str("permissions"),
		Features:                 r.strings("features"),
		ApproximateMemberCount:   int(r.integer("approximate_member_count")),
		ApproximatePresenceCount: int(r.integer("approximate_presence_count")),
		Raw:                      append(json.RawMessage(nil), b...),
	}
	return nil
}

func (g Guild) MarshalJSON() ([]byte, error) {
	if len(g.Raw) > 0 {
		return g.Raw, nil
	}
	type plain Guild
	return json.Marshal(plain(g))
}

// record is a JSON object read field by field. Anything that is not an
// object yields an empty record.
type record map[string]json.RawMessage

func parseRecord(b []byte) record {
	var r record
	_ = json.Unmarshal(b, &r)
	return r
}

// str accepts a JSON string or number.
func (r record) str(key string) string {
	raw, ok := r[key]
	if !ok {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		return n.String()
	}
	return ""
}

func (r record) optStr(key string) *string {
	raw, ok := r[key]
	if !ok {
		return nil
	}
	var s *string
	if json.Unmarshal(raw, &s) != nil {
		return nil
	}
	return s
}

func (r record) boolean(key string) bool {
	var v bool
	_ = json.Unmarshal(r[key], &v)
	return v
}

// integer accepts a JSON number or a numeric string.
func (r record) integer(key string) int64 {
	v, _ := strconv.ParseInt(r.str(key), 10, 64)
	return v
}

func (r record) strings(key string) []string {
	var v []string
	_ = json.Unmarshal(r[key], &v)
	return v
}

// AvatarURL returns the 1024px PNG avatar URL for a user. A nil avatar
// still yields a URL, with "null" as the hash segment, so existing
// consumers keep seeing the same shape.
func AvatarURL(cdnBase, userID string, avatar *string) string {
	hash := "null"
	if avatar != nil {
		hash = *avatar
	}
	return cdnBase + "/avatars/" + url.PathEscape(userID) + "/" + url.PathEscape(hash) + ".png?size=1024"
}
