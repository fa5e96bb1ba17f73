package dto

import "time"

type ContestResponseDTO struct {
	ID              uint       `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	StartTime       *time.Time `json:"start_time,omitempty"`
	DurationMinutes int        `json:"duration_minutes,omitempty"`
	Difficulty      string     `json:"difficulty,omitempty"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
}

type CatalogQuestionResponseDTO struct {
	ID            uint     `json:"id"`
	ContestID     uint     `json:"contest_id"`
	QuestionText  string   `json:"question_text"`
	Options       []string `json:"options"`
	CorrectOption string   `json:"correct_option"`
	Marks         int      `json:"marks"`
}
