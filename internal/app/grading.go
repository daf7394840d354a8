package app

import (
	"fmt"
	"math"
)

// TimeWarningSeconds is the remaining time under which the clock is highlighted.
const TimeWarningSeconds = 300

// Percentage rounds score/total to a whole percent; 0 when total is 0.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}

// Band classifies a percentage for colouring the score.
func Band(percentage int) string {
	switch {
	case percentage >= 80:
		return "success"
	case percentage >= 60:
		return "warning"
	default:
		return "danger"
	}
}

// Message is the encouragement shown with a score.
func Message(percentage int) string {
	switch {
	case percentage >= 90:
		return "Excellent work! Outstanding performance!"
	case percentage >= 80:
		return "Great job! You did really well!"
	case percentage >= 70:
		return "Good work! Nice understanding of the material."
	case percentage >= 60:
		return "Not bad! Keep studying to improve."
	default:
		return "Keep practicing! Review the material and try again."
	}
}

// FormatClock renders seconds as MM:SS.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Progress is the percent of the quiz reached when index is displayed.
func Progress(index, count int) int {
	if count <= 0 {
		return 0
	}
	return (index + 1) * 100 / count
}
