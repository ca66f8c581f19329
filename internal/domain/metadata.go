package domain

// GraphMetadata is a loosely-typed document about a graph entity. Every known field is
// optional so partial records from the graph store decode cleanly.
type GraphMetadata struct {
	ID                  string  `json:"id"`
	Title               *string `json:"title,omitempty"`
	Name                *string `json:"name,omitempty"`
	Universe            *string `json:"universe,omitempty"`
	Description         *string `json:"description,omitempty"`
	DetailDescription   *string `json:"detail_description,omitempty"`
	PlayTime            *string `json:"play_time,omitempty"`
	ProtagonistName     *string `json:"protagonist_name,omitempty"`
	ProtagonistDesc     *string `json:"protagonist_desc,omitempty"`
	Setting             *string `json:"setting,omitempty"`
	Synopsis            *string `json:"synopsis,omitempty"`
	TwistedSynopsis     *string `json:"twisted_synopsis,omitempty"`
	UniverseID          *string `json:"universe_id,omitempty"`
	RepresentativeImage *string `json:"representative_image,omitempty"`
	CreatedAtMillis     *int64  `json:"created_at,omitempty"`
	CreatedAt           *string `json:"createdAt,omitempty"`
	UpdatedAt           *string `json:"updatedAt,omitempty"`
}

// MetadataPatch lists the fields an update may touch; nil fields are left unchanged.
type MetadataPatch struct {
	Title               *string `json:"title,omitempty"`
	Name                *string `json:"name,omitempty"`
	Universe            *string `json:"universe,omitempty"`
	Description         *string `json:"description,omitempty"`
	DetailDescription   *string `json:"detail_description,omitempty"`
	PlayTime            *string `json:"play_time,omitempty"`
	ProtagonistName     *string `json:"protagonist_name,omitempty"`
	ProtagonistDesc     *string `json:"protagonist_desc,omitempty"`
	Setting             *string `json:"setting,omitempty"`
	Synopsis            *string `json:"synopsis,omitempty"`
	TwistedSynopsis     *string `json:"twisted_synopsis,omitempty"`
	UniverseID          *string `json:"universe_id,omitempty"`
	RepresentativeImage *string `json:"representative_image,omitempty"`
}

// Fields returns the set fields keyed by their stored property name.
func (p MetadataPatch) Fields() map[string]any {
	out := map[string]any{}
	set := func(key string, v *string) {
		if v != nil {
			out[key] = *v
		}
	}
	set("title", p.Title)
	set("name", p.Name)
	set("universe", p.Universe)
	set("description", p.Description)
	set("detail_description", p.DetailDescription)
	set("play_time", p.PlayTime)
	set("protagonist_name", p.ProtagonistName)
	set("protagonist_desc", p.ProtagonistDesc)
	set("setting", p.Setting)
	set("synopsis", p.Synopsis)
	set("twisted_synopsis", p.TwistedSynopsis)
	set("universe_id", p.UniverseID)
	set("representative_image", p.RepresentativeImage)
	return out
}

// Apply copies the set fields of p onto m.
func (p MetadataPatch) Apply(m *GraphMetadata) {
	if m == nil {
		return
	}
	pick := func(dst **string, v *string) {
		if v != nil {
			s := *v
			*dst = &s
		}
	}
	pick(&m.Title, p.Title)
	pick(&m.Name, p.Name)
	pick(&m.Universe, p.Universe)
	pick(&m.Description, p.Description)
	pick(&m.DetailDescription, p.DetailDescription)
	pick(&m.PlayTime, p.PlayTime)
	pick(&m.ProtagonistName, p.ProtagonistName)
	pick(&m.ProtagonistDesc, p.ProtagonistDesc)
	pick(&m.Setting, p.Setting)
	pick(&m.Synopsis, p.Synopsis)
	pick(&m.TwistedSynopsis, p.TwistedSynopsis)
	pick(&m.UniverseID, p.UniverseID)
	pick(&m.RepresentativeImage, p.RepresentativeImage)
}

// MetadataFromProperties builds a GraphMetadata from raw stored properties, ignoring unknown
// keys and values of the wrong type.
func MetadataFromProperties(id string, props map[string]any) GraphMetadata {
	m := GraphMetadata{ID: id}
	str := func(key string) *string {
		if v, ok := props[key].(string); ok {
			return &v
		}
		return nil
	}
	m.Title = str("title")
	m.Name = str("name")
	m.Universe = str("universe")
	m.Description = str("description")
	m.DetailDescription = str("detail_description")
	m.PlayTime = str("play_time")
	m.ProtagonistName = str("protagonist_name")
	m.ProtagonistDesc = str("protagonist_desc")
	m.Setting = str("setting")
	m.Synopsis = str("synopsis")
	m.TwistedSynopsis = str("twisted_synopsis")
	m.UniverseID = str("universe_id")
	m.RepresentativeImage = str("representative_image")
	m.CreatedAt = str("createdAt")
	m.UpdatedAt = str("updatedAt")
	switch v := props["created_at"].(type) {
	case int64:
		m.CreatedAtMillis = &v
	case int:
		n := int64(v)
		m.CreatedAtMillis = &n
	case float64:
		n := int64(v)
		m.CreatedAtMillis = &n
	}
	return m
}

// DisplayName prefers name, then title.
func (m GraphMetadata) DisplayName() string {
	if m.Name != nil && *m.Name != "" {
		return *m.Name
	}
	if m.Title != nil {
		return *m.Title
	}
	return ""
}
