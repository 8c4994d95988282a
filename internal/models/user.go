package models

import "encoding/json"

// User is an account identity. Read-only from this client's perspective;
// the auth backend owns it.
type User struct {
	ID    string `json:"_id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
}

// UserRef references a user. The backend sometimes returns a bare id string
// and sometimes a populated object, depending on the endpoint, so it
// unmarshals from either shape.
type UserRef struct {
	ID    string `json:"_id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

func (r *UserRef) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}
	type plain UserRef
	return json.Unmarshal(data, (*plain)(r))
}

// ProjectRef references a project, bare id or populated object.
type ProjectRef struct {
	ID   string `json:"_id"`
	Name string `json:"name,omitempty"`
}

func (r *ProjectRef) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}
	type plain ProjectRef
	return json.Unmarshal(data, (*plain)(r))
}
