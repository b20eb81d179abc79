package pipeline

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/askiada/go-tempo/pkg/pipeline/model"
)

// Models groups the models of a pipeline by role.
type Models map[string]*model.Model

// Roles returns the declared roles in lexical order.
func (m Models) Roles() []string {
	roles := make([]string, 0, len(m))
	for role := range m {
		roles = append(roles, role)
	}

	sort.Strings(roles)

	return roles
}

// Details returns the metadata of every model keyed by role.
func (m Models) Details() map[string]model.Details {
	res := make(map[string]model.Details, len(m))
	for role, mdl := range m {
		res[role] = mdl.Details()
	}

	return res
}

func (m Models) validate(pipelineName string) error {
	if len(m) == 0 {
		return ErrModelsMustBeSet
	}

	names := map[string]string{pipelineName: ""}

	for _, role := range m.Roles() {
		mdl := m[role]
		if mdl == nil {
			return errors.Wrapf(ErrModelMustBeSet, "role %s", role)
		}

		if other, ok := names[mdl.Name()]; ok {
			if other == "" {
				return errors.Wrapf(ErrDuplicateModelName, "role %s uses the pipeline name %s", role, mdl.Name())
			}

			return errors.Wrapf(ErrDuplicateModelName, "roles %s and %s both use %s", other, role, mdl.Name())
		}

		names[mdl.Name()] = role
	}

	return nil
}

func (m Models) clone() Models {
	res := make(Models, len(m))
	for role, mdl := range m {
		res[role] = mdl
	}

	return res
}
