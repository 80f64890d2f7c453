package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Catalog categories. A lesson template's category selects which catalog kind it binds to.
const (
	CategoryFood = "food"
	CategoryWine = "wine"
)

const (
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

const (
	ProgressNotStarted = "not_started"
	ProgressInProgress = "in_progress"
	ProgressCompleted  = "completed"
)

var ErrQuestionImmutable = errors.New("generated question is immutable once issued")

type Restaurant struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string     `json:"name" gorm:"not null"`
	IsActive  bool       `json:"is_active" gorm:"not null"`
	Employees []Employee `json:"employees,omitempty" gorm:"foreignKey:RestaurantID"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type Employee struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	RestaurantID uuid.UUID `json:"restaurant_id" gorm:"type:uuid;not null;index"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	Role         string    `json:"role" gorm:"not null;default:'employee'"`
	IsActive     bool      `json:"is_active" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Dish struct {
	ID                  uuid.UUID                   `json:"id" gorm:"type:uuid;primaryKey"`
	RestaurantID        uuid.UUID                   `json:"restaurant_id" gorm:"type:uuid;not null;index"`
	Name                string                      `json:"name" gorm:"not null"`
	Description         string                      `json:"description"`
	Price               decimal.Decimal             `json:"price" gorm:"type:numeric(10,2);not null"`
	DishTypes           datatypes.JSONSlice[string] `json:"dish_types"`
	ImageURL            string                      `json:"image_url"`
	Allergens           datatypes.JSONSlice[string] `json:"allergens"`
	DietaryRestrictions datatypes.JSONSlice[string] `json:"dietary_restrictions"`
	Accommodations      datatypes.JSONSlice[string] `json:"accommodations"`
	Temperature         string                      `json:"temperature"`
	IsVegetarian        bool                        `json:"is_vegetarian"`
	IsVegan             bool                        `json:"is_vegan"`
	IsGlutenFree        bool                        `json:"is_gluten_free"`
	ContainsDairy       bool                        `json:"contains_dairy"`
	ContainsNuts        bool                        `json:"contains_nuts"`
	IsSpicy             bool                        `json:"is_spicy"`
	CanSubstitute       bool                        `json:"can_substitute"`
	CrossContactRisk    bool                        `json:"cross_contact_risk"`
	IsDeleted           bool                        `json:"is_deleted" gorm:"not null;default:false;index"`
	CreatedAt           time.Time                   `json:"created_at"`
	UpdatedAt           time.Time                   `json:"updated_at"`
}

// PrimaryType is the dish's course; the first listed dish type.
func (d *Dish) PrimaryType() string {
	if len(d.DishTypes) == 0 {
		return ""
	}
	return d.DishTypes[0]
}

type Wine struct {
	ID               uuid.UUID                   `json:"id" gorm:"type:uuid;primaryKey"`
	RestaurantID     uuid.UUID                   `json:"restaurant_id" gorm:"type:uuid;not null;index"`
	ProductName      string                      `json:"product_name" gorm:"not null"`
	Producer         string                      `json:"producer"`
	Varietals        datatypes.JSONSlice[string] `json:"varietals"`
	IsBlend          bool                        `json:"is_blend"`
	Vintage          int                         `json:"vintage"`
	Country          string                      `json:"country"`
	MajorRegion      string                      `json:"major_region"`
	Category         string                      `json:"category"`
	Style            string                      `json:"style"`
	ByTheGlass       bool                        `json:"by_the_glass"`
	ByTheBottle      bool                        `json:"by_the_bottle"`
	GlassPrice       decimal.Decimal             `json:"glass_price" gorm:"type:numeric(10,2)"`
	BottlePrice      decimal.Decimal             `json:"bottle_price" gorm:"type:numeric(10,2)"`
	ImageURL         string                      `json:"image_url"`
	IsOrganic        bool                        `json:"is_organic"`
	IsBiodynamic     bool                        `json:"is_biodynamic"`
	IsVegan          bool                        `json:"is_vegan"`
	IsFiltered       bool                        `json:"is_filtered"`
	HasResidualSugar bool                        `json:"has_residual_sugar"`
	IsDeleted        bool                        `json:"is_deleted" gorm:"not null;default:false;index"`
	CreatedAt        time.Time                   `json:"created_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`
}

type LessonTemplate struct {
	ID          uuid.UUID                         `json:"id" gorm:"type:uuid;primaryKey"`
	Category    string                            `json:"category" yaml:"category" gorm:"not null;uniqueIndex:idx_template_key"`
	Unit        int                               `json:"unit" yaml:"unit" gorm:"not null;uniqueIndex:idx_template_key"`
	UnitName    string                            `json:"unit_name" yaml:"unit_name"`
	Chapter     int                               `json:"chapter" yaml:"chapter" gorm:"not null;uniqueIndex:idx_template_key"`
	ChapterName string                            `json:"chapter_name" yaml:"chapter_name"`
	Difficulty  string                            `json:"difficulty" yaml:"difficulty"`
	Content     datatypes.JSONSlice[ContentBlock] `json:"content" yaml:"content"`
	Questions   datatypes.JSONSlice[QuestionSpec] `json:"questions" yaml:"questions"`
	CreatedAt   time.Time                         `json:"created_at" yaml:"-"`
	UpdatedAt   time.Time                         `json:"updated_at" yaml:"-"`
}

type ContentBlock struct {
	Type string `json:"type" yaml:"type"`
	Body string `json:"body" yaml:"body"`
}

type Lesson struct {
	ID           uuid.UUID                         `json:"id" gorm:"type:uuid;primaryKey"`
	RestaurantID uuid.UUID                         `json:"restaurant_id" gorm:"type:uuid;not null;uniqueIndex:idx_lesson_key"`
	TemplateID   uuid.UUID                         `json:"template_id" gorm:"type:uuid;not null;index"`
	Category     string                            `json:"category" gorm:"not null;uniqueIndex:idx_lesson_key"`
	Unit         int                               `json:"unit" gorm:"not null;uniqueIndex:idx_lesson_key"`
	UnitName     string                            `json:"unit_name"`
	Chapter      int                               `json:"chapter" gorm:"not null;uniqueIndex:idx_lesson_key"`
	ChapterName  string                            `json:"chapter_name"`
	Difficulty   string                            `json:"difficulty"`
	Content      datatypes.JSONSlice[ContentBlock] `json:"content"`
	IsDeleted    bool                              `json:"is_deleted" gorm:"not null;default:false"`
	MenuItems    []LessonMenuItem                  `json:"menu_items" gorm:"foreignKey:LessonID;constraint:OnDelete:CASCADE"`
	Questions    []GeneratedQuestion               `json:"questions" gorm:"foreignKey:LessonID;constraint:OnDelete:CASCADE"`
	Progress     []Progress                        `json:"progress" gorm:"foreignKey:LessonID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time                         `json:"created_at"`
	UpdatedAt    time.Time                         `json:"updated_at"`
}

// MenuItemIDs returns the catalog items the lesson covers.
func (l *Lesson) MenuItemIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(l.MenuItems))
	for _, mi := range l.MenuItems {
		ids = append(ids, mi.MenuItemID)
	}
	return ids
}

// HasMenuItem reports whether the lesson already covers itemID.
func (l *Lesson) HasMenuItem(itemID uuid.UUID) bool {
	for _, mi := range l.MenuItems {
		if mi.MenuItemID == itemID {
			return true
		}
	}
	return false
}

type LessonMenuItem struct {
	LessonID   uuid.UUID `json:"-" gorm:"type:uuid;primaryKey"`
	MenuItemID uuid.UUID `json:"menu_item" gorm:"type:uuid;primaryKey;index"`
	CreatedAt  time.Time `json:"created_at"`
}

// GeneratedQuestion is one entry of a lesson's append-only question log.
type GeneratedQuestion struct {
	ID             uuid.UUID                   `json:"id" gorm:"type:uuid;primaryKey"`
	LessonID       uuid.UUID                   `json:"lesson_id" gorm:"type:uuid;not null;uniqueIndex:idx_question_key;uniqueIndex:idx_question_ordinal"`
	Ordinal        int                         `json:"ordinal" gorm:"not null;uniqueIndex:idx_question_ordinal"`
	Key            string                      `json:"-" gorm:"not null;size:64;uniqueIndex:idx_question_key"`
	MenuItemID     uuid.UUID                   `json:"menu_item" gorm:"type:uuid;not null;index"`
	Text           string                      `json:"text" gorm:"not null"`
	QuestionType   string                      `json:"question_type" gorm:"not null"`
	Options        datatypes.JSONSlice[string] `json:"options"`
	CorrectAnswers datatypes.JSONSlice[string] `json:"correct_answers"`
	Explanation    string                      `json:"explanation,omitempty"`
	IsDeleted      bool                        `json:"is_deleted" gorm:"not null;default:false"`
	CreatedAt      time.Time                   `json:"created_at"`
	UpdatedAt      time.Time                   `json:"updated_at"`
}

// BeforeUpdate rejects any update touching more than the soft-delete flag,
// so issued questions keep the identity and text employees answered against.
func (q *GeneratedQuestion) BeforeUpdate(tx *gorm.DB) error {
	if tx.Statement.Changed("LessonID", "Ordinal", "Key", "MenuItemID", "Text", "QuestionType", "Options", "CorrectAnswers", "Explanation") {
		return ErrQuestionImmutable
	}
	return nil
}

type Progress struct {
	ID         uuid.UUID                    `json:"id" gorm:"type:uuid;primaryKey"`
	LessonID   uuid.UUID                    `json:"lesson_id" gorm:"type:uuid;not null;uniqueIndex:idx_progress_key"`
	EmployeeID uuid.UUID                    `json:"employee_id" gorm:"type:uuid;not null;uniqueIndex:idx_progress_key"`
	Status     string                       `json:"status" gorm:"not null;default:'not_started'"`
	Score      int                          `json:"score"`
	Attempts   datatypes.JSONSlice[Attempt] `json:"attempts"`
	CreatedAt  time.Time                    `json:"created_at"`
	UpdatedAt  time.Time                    `json:"updated_at"`
}

type Attempt struct {
	QuestionID uuid.UUID `json:"question_id"`
	Answers    []string  `json:"answers"`
	IsCorrect  bool      `json:"is_correct"`
	AnsweredAt time.Time `json:"answered_at"`
}

func (r *Restaurant) BeforeCreate(*gorm.DB) error {
	r.ID = ensureID(r.ID)
	return nil
}

func (e *Employee) BeforeCreate(*gorm.DB) error {
	e.ID = ensureID(e.ID)
	return nil
}

func (d *Dish) BeforeCreate(*gorm.DB) error {
	d.ID = ensureID(d.ID)
	return nil
}

func (w *Wine) BeforeCreate(*gorm.DB) error {
	w.ID = ensureID(w.ID)
	return nil
}

func (t *LessonTemplate) BeforeCreate(*gorm.DB) error {
	t.ID = ensureID(t.ID)
	return nil
}

func (l *Lesson) BeforeCreate(*gorm.DB) error {
	l.ID = ensureID(l.ID)
	return nil
}

func (q *GeneratedQuestion) BeforeCreate(*gorm.DB) error {
	q.ID = ensureID(q.ID)
	return nil
}

func (p *Progress) BeforeCreate(*gorm.DB) error {
	p.ID = ensureID(p.ID)
	return nil
}

func ensureID(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return uuid.New()
	}
	return id
}
