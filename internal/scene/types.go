// Package scene turns a photo into bilingual learning content.
package scene

type ObjectTag struct {
	EN       string `json:"en"`
	CN       string `json:"cn"`
	Phonetic string `json:"phonetic"`
	POS      string `json:"pos"`
}

type Sentence struct {
	EN string `json:"en"`
	CN string `json:"cn"`
}

type Role struct {
	RoleEN    string     `json:"role_en"`
	RoleCN    string     `json:"role_cn"`
	Sentences []Sentence `json:"sentences"`
}

type Expressions struct {
	Roles []Role `json:"roles"`
}

type Description struct {
	EN string `json:"en"`
	CN string `json:"cn"`
}

// Basic is the first phase of an analysis: everything except expressions.
type Basic struct {
	SceneTag    string      `json:"scene_tag"`
	SceneTagCN  string      `json:"scene_tag_cn"`
	ObjectTags  []ObjectTag `json:"object_tags"`
	Description Description `json:"description"`
	Category    string      `json:"category"`
}

// Analysis is the complete result of a one-shot analysis.
type Analysis struct {
	SceneTag    string      `json:"scene_tag"`
	SceneTagCN  string      `json:"scene_tag_cn"`
	ObjectTags  []ObjectTag `json:"object_tags"`
	Description Description `json:"description"`
	Expressions Expressions `json:"expressions"`
	Category    string      `json:"category"`
}

// ExpressionsPayload is the data of a streamed expressions event.
type ExpressionsPayload struct {
	Expressions Expressions `json:"expressions"`
}
