package scoring

import "fmt"

// Feedback is the player-facing text for a score.
type Feedback struct {
	Title     string `json:"title"`
	Message   string `json:"message"`
	Celebrate bool   `json:"celebrate"`
}

// ReadyFeedback is shown before the first stroke.
var ReadyFeedback = Feedback{ //nolint:gochecknoglobals // fixed copy
	Title:   "Ready to draw!",
	Message: "Tap the canvas to start drawing your circle",
}

// HintMessage is returned when a stroke is too short to score.
const HintMessage = "Draw a full circle in one stroke"

// band thresholds, highest first.
var bands = []struct { //nolint:gochecknoglobals // fixed copy
	min     int
	prefix  string
	message string
}{
	{95, "Perfect! ", "Incredible! You drew an almost perfect circle! 🎯"},
	{85, "Excellent! ", "Great job! That's a very good circle! 👍"},
	{70, "Good! ", "Not bad at all! Keep practicing to improve! 💪"},
	{50, "", "You're getting there! Try to make it more circular. 🔄"},
	{0, "", "Keep practicing! Focus on making a smooth, round shape. 📝"},
}

// FeedbackFor returns the title and message for score. Scores at or above
// DefaultHighScoreThreshold celebrate.
func FeedbackFor(score int) Feedback {
	for _, b := range bands {
		if score >= b.min {
			return Feedback{
				Title:     fmt.Sprintf("%s%d%%", b.prefix, score),
				Message:   b.message,
				Celebrate: IsHighScore(score, DefaultHighScoreThreshold),
			}
		}
	}
	last := bands[len(bands)-1]
	return Feedback{Title: fmt.Sprintf("%d%%", score), Message: last.message}
}
