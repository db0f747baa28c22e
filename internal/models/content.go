package models

import "time"

// DefaultImage is shown for people without an uploaded photo
const DefaultImage = "/user.jpg"

// Teacher is a member of the teaching staff shown on the teachers page
type Teacher struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Subject       string    `json:"subject"`
	Role          string    `json:"role"`
	Class         string    `json:"class"`
	Stream        string    `json:"stream"`
	Experience    string    `json:"experience"`
	Qualification string    `json:"qualification"`
	Bio           string    `json:"bio"`
	Photo         string    `json:"photo"`
	PhotoPublicID string    `json:"photo_public_id"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	CreatedAt     time.Time `json:"created_at"`
}

// TeacherRequest is the body accepted when creating or replacing a teacher
type TeacherRequest struct {
	Name          string `json:"name" validate:"required"`
	Subject       string `json:"subject"`
	Role          string `json:"role"`
	Class         string `json:"class"`
	Stream        string `json:"stream"`
	Experience    string `json:"experience"`
	Qualification string `json:"qualification"`
	Bio           string `json:"bio"`
	Photo         string `json:"photo"`
	PhotoPublicID string `json:"photo_public_id"`
	Email         string `json:"email" validate:"omitempty,email"`
	Phone         string `json:"phone"`
}

// Apply copies the request fields onto t
func (r *TeacherRequest) Apply(t *Teacher) {
	t.Name = r.Name
	t.Subject = r.Subject
	t.Role = r.Role
	t.Class = r.Class
	t.Stream = r.Stream
	t.Experience = r.Experience
	t.Qualification = r.Qualification
	t.Bio = r.Bio
	t.Photo = r.Photo
	t.PhotoPublicID = r.PhotoPublicID
	t.Email = r.Email
	t.Phone = r.Phone
}

// Alumnus is a former student featured on the alumni page
type Alumnus struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Batch       string    `json:"batch"`
	Profession  string    `json:"profession"`
	Achievement string    `json:"achievement"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"created_at"`
}

// AlumnusRequest is the body accepted for alumni writes
type AlumnusRequest struct {
	Name        string `json:"name" validate:"required"`
	Batch       string `json:"batch"`
	Profession  string `json:"profession"`
	Achievement string `json:"achievement"`
	Image       string `json:"image"`
}

// Apply copies the request onto a, falling back to the default image
func (r *AlumnusRequest) Apply(a *Alumnus) {
	a.Name = r.Name
	a.Batch = r.Batch
	a.Profession = r.Profession
	a.Achievement = r.Achievement
	a.Image = r.Image
	if a.Image == "" {
		a.Image = DefaultImage
	}
}

// CampusSection is one block of the campus page
type CampusSection struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
}

// CampusSectionRequest is the body accepted for campus section writes
type CampusSectionRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Position    int    `json:"position"`
}

// Apply copies the request fields onto s
func (r *CampusSectionRequest) Apply(s *CampusSection) {
	s.Title = r.Title
	s.Description = r.Description
	s.Image = r.Image
	s.Position = r.Position
}

// Sport is an activity card on the sports page
type Sport struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
}

// SportRequest is the body accepted for sport writes
type SportRequest struct {
	Title       string `json:"title" validate:"required"`
	Category    string `json:"category" validate:"required"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Position    int    `json:"position"`
}

// Apply copies the request fields onto s
func (r *SportRequest) Apply(s *Sport) {
	s.Title = r.Title
	s.Category = r.Category
	s.Description = r.Description
	s.Image = r.Image
	s.Position = r.Position
}

// GalleryImage is a picture in the public gallery
type GalleryImage struct {
	ID        int64     `json:"id"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
}

// GalleryImageRequest is the body accepted when adding a gallery image
type GalleryImageRequest struct {
	Image string `json:"image" validate:"required"`
}

// Trustee is a member of the managing trust
type Trustee struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Image     string    `json:"image"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// TrusteeRequest is the body accepted for trustee writes
type TrusteeRequest struct {
	Name     string `json:"name" validate:"required,notblank"`
	Role     string `json:"role" validate:"required,notblank"`
	Image    string `json:"image"`
	Position int    `json:"position"`
}

// Apply copies the request onto t, falling back to the default image
func (r *TrusteeRequest) Apply(t *Trustee) {
	t.Name = r.Name
	t.Role = r.Role
	t.Image = r.Image
	if t.Image == "" {
		t.Image = DefaultImage
	}
	t.Position = r.Position
}

// TrustInfo is the "about the managing trust" block
type TrustInfo struct {
	Title        string `json:"title"`
	Description1 string `json:"description1"`
	Description2 string `json:"description2"`
	Logo         string `json:"logo"`
}

// DefaultTrustInfo is served until an administrator saves the block
func DefaultTrustInfo() TrustInfo {
	return TrustInfo{
		Title:        "About the Managing Trust",
		Description1: "R. N. Naik Sarvajanik High School is managed by Katha Vibhag Kelavani Mandal, Sarikhurad, a private aided educational trust dedicated to strengthening education in rural communities of the Gandevi Taluka, Navsari district.",
		Description2: "The trust focuses on providing accessible and quality education at the secondary and higher secondary levels by maintaining academic discipline, supporting qualified teaching staff, and developing essential educational infrastructure.",
		Logo:         "/trus.jpeg",
	}
}

// StudentSection is one block of the students page
type StudentSection struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"created_at"`
}

// StudentSectionRequest is the body accepted for student section writes
type StudentSectionRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// Apply copies the request fields onto s
func (r *StudentSectionRequest) Apply(s *StudentSection) {
	s.Title = r.Title
	s.Description = r.Description
	s.Image = r.Image
}

// StudentStats are the headline numbers on the students page
type StudentStats struct {
	TotalStudents int `json:"total_students" validate:"min=0"`
	TotalClasses  int `json:"total_classes" validate:"min=0"`
	Achievements  int `json:"achievements" validate:"min=0"`
	Activities    int `json:"activities" validate:"min=0"`
}

// DefaultStudentStats is served until an administrator saves the numbers
func DefaultStudentStats() StudentStats {
	return StudentStats{
		TotalStudents: 1200,
		TotalClasses:  40,
		Achievements:  100,
		Activities:    30,
	}
}

// UploadedImage describes an image accepted by the object store
type UploadedImage struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
	Type     string `json:"type,omitempty"`
}
