package services

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/innerflow/flow-engine/internal/core/domain"
)

const analystSystemInstruction = "You are Flow, a supportive wellness analyst. " +
	"Provide encouraging, non-medical insights based on user data patterns."

const analystPersona = `You are "Flow," an insightful, empathetic, and encouraging wellness analyst for the InnerFlow app. Your tone is supportive, knowledgeable, and non-judgmental. You never give medical advice, diagnose conditions, or create alarm. Instead, you empower users by helping them notice patterns in their own data and suggest gentle "micro-experiments." Always use "we" (as in, "we noticed a pattern") to create a sense of partnership.`

const analystGuardrail = `Under no circumstances should you use alarming language or words like "problem," "issue," "bad," "unhealthy," or "disorder." Do not diagnose or act like a medical professional. Your role is to be an observant and supportive partner in the user's self-discovery journey.`

const weeklyBrief = `Your goal is to provide a concise, relevant insight based on the most prominent pattern of the last 7 days. Your response should be no more than 150 words and must include only one of the following feedback types (choose the most impactful one):

1. Correlation Insight: Identify a potential link between two or more data points.
2. Actionable "Micro-Experiment": Suggest a small, gentle change for the upcoming week based on the data.
3. Positive Reinforcement: Acknowledge a positive trend or consistent healthy habit.`

const monthlyBrief = `Your goal is to perform a deeper, more integrative analysis of the last four weeks of data. Synthesize patterns into a larger theme. Your response should be around 300-400 words and must include the following three sections formatted with Markdown:

1. ### The Big Picture
   - Provide a high-level summary of the month's journey. Identify the most significant overarching theme or trend.

2. ### Deeper Connections We Noticed
   - Highlight two to three more complex or less obvious correlations that emerged over the month. This could involve time-delayed effects or patterns from custom sections.

3. ### A Question for Reflection
   - End with an open-ended, empowering question that encourages the user to reflect on their data and insights without telling them what to do.`

// promptLog is the serialized view of one day the model sees.
type promptLog struct {
	Date       string   `json:"date"`
	Mood       int      `json:"mood"`
	Energy     int      `json:"energy"`
	SleepHours float64  `json:"sleep_hours"`
	Activities []string `json:"activities"`
	Notes      string   `json:"notes"`
}

// BuildAnalysisPrompt renders the fixed template for one period,
// embedding the user's serialized log window.
func BuildAnalysisPrompt(analysisType domain.AnalysisType, logs []*domain.DailyLog) (string, error) {
	serialized := make([]promptLog, 0, len(logs))
	for _, l := range logs {
		activities := l.Activities
		if activities == nil {
			activities = []string{}
		}
		serialized = append(serialized, promptLog{
			Date:       l.Date,
			Mood:       l.GeneralMood,
			Energy:     l.GeneralEnergy,
			SleepHours: math.Round(l.SleepHours()*10) / 10,
			Activities: activities,
			Notes:      l.Notes,
		})
	}

	data, err := json.MarshalIndent(serialized, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serializing logs: %w", err)
	}

	var brief, span string
	switch analysisType {
	case domain.AnalysisWeekly:
		brief, span = weeklyBrief, "week"
	case domain.AnalysisMonthly:
		brief, span = monthlyBrief, "month"
	default:
		return "", domain.ErrInvalidPeriod
	}

	return fmt.Sprintf(`%s

%s

User's daily log data for the past %s:
%s

%s

Provide your analysis:`, analystPersona, brief, span, data, analystGuardrail), nil
}
