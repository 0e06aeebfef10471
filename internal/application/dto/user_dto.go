package dto

import (
	"regexp"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"

	"github.com/jhoicas/Auth-api/internal/domain"
	"github.com/jhoicas/Auth-api/internal/domain/entity"
)

// DateLayout formato de fecha de nacimiento.
const DateLayout = "2006-01-02"

var userNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,50}$`)

// UserResponse salida de un usuario (sin password ni token de reseteo).
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	UserName  string    `json:"userName"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	DOB       string    `json:"dob,omitempty"`
	Gender    string    `json:"gender,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ToUserResponse proyección pública de la entidad.
func ToUserResponse(u *entity.User) UserResponse {
	r := UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		UserName:  u.UserName,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Gender:    u.Gender,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.DOB != nil {
		r.DOB = u.DOB.Format(DateLayout)
	}
	return r
}

// UpdateUserRequest campos opcionales de perfil; nil = sin cambio.
type UpdateUserRequest struct {
	Email     *string `json:"email,omitempty"`
	UserName  *string `json:"userName,omitempty"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	DOB       *string `json:"dob,omitempty"`
	Gender    *string `json:"gender,omitempty"`
}

// Validate reglas de formato sobre los campos presentes.
func (r *UpdateUserRequest) Validate() error {
	if r.Email != nil {
		if err := validateEmail(*r.Email); err != nil {
			return err
		}
	}
	if r.UserName != nil {
		if err := validateUserName(*r.UserName); err != nil {
			return err
		}
	}
	if r.FirstName != nil && strings.TrimSpace(*r.FirstName) == "" {
		return domain.Validation("first name cannot be empty")
	}
	if r.LastName != nil && strings.TrimSpace(*r.LastName) == "" {
		return domain.Validation("last name cannot be empty")
	}
	if r.DOB != nil {
		if _, err := ParseDOB(*r.DOB); err != nil {
			return err
		}
	}
	if r.Gender != nil {
		if err := validateGender(*r.Gender); err != nil {
			return err
		}
	}
	return nil
}

// UpdateRoleRequest cambio de rol (solo admin).
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// Validate el rol debe pertenecer a la enumeración cerrada.
func (r *UpdateRoleRequest) Validate() error {
	if _, ok := entity.ParseRole(r.Role); !ok {
		return domain.Validation("role must be one of admin, manager, user")
	}
	return nil
}

// ListUsersRequest filtros del listado.
type ListUsersRequest struct {
	Page   int    `query:"page"`
	Limit  int    `query:"limit"`
	Search string `query:"search"`
	Role   string `query:"role"`
}

// PageRequest página normalizada del listado.
func (r *ListUsersRequest) PageRequest() PageRequest {
	p := PageRequest{Page: r.Page, Limit: r.Limit}
	p.Normalize()
	return p
}

// Validate rol opcional dentro de la enumeración.
func (r *ListUsersRequest) Validate() error {
	if r.Role != "" {
		if _, ok := entity.ParseRole(r.Role); !ok {
			return domain.Validation("role must be one of admin, manager, user")
		}
	}
	return nil
}

// ValidateID los ids de ruta son UUID.
func ValidateID(id string) error {
	if !govalidator.IsUUID(id) {
		return domain.Validation("invalid user id")
	}
	return nil
}

// ParseDOB fecha opcional YYYY-MM-DD; vacío = nil.
func ParseDOB(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, domain.Validation("date of birth must be YYYY-MM-DD")
	}
	return &t, nil
}

func validateEmail(s string) error {
	if !govalidator.IsEmail(strings.TrimSpace(s)) {
		return domain.Validation("please provide a valid email")
	}
	return nil
}

func validateUserName(s string) error {
	if !userNamePattern.MatchString(s) {
		return domain.Validation("username must be 3-50 characters: letters, numbers and underscores")
	}
	return nil
}

func validateGender(s string) error {
	if s == "" {
		return nil
	}
	if !govalidator.IsIn(s, entity.GenderMale, entity.GenderFemale, entity.GenderOther) {
		return domain.Validation("gender must be male, female or other")
	}
	return nil
}
