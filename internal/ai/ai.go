package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// AIService wraps the Gemini client used for food detection in photos.
// It replaces a locally hosted object-detection model: same contract (image
// in, labelled detections out), no model weights to ship.
type AIService struct {
	Client *genai.Client
}

// Detection is one recognized food item in an uploaded image.
type Detection struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
	Quantity   int     `json:"quantity"`
}

// NewAIService initializes the Gemini client.
func NewAIService(apiKey string) (*AIService, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &AIService{Client: client}, nil
}

// DetectFoodItems sends an image to the vision model and parses the
// detections out of its JSON reply.
func (s *AIService) DetectFoodItems(ctx context.Context, imageData []byte, mimeType string) ([]Detection, error) {
	model := s.Client.GenerativeModel("gemini-1.5-flash")

	// Force a machine-readable reply; without this the model tends to
	// wrap the JSON in prose.
	model.SetTemperature(0)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(`
			You are a grocery recognition system. Identify every distinct
			food or drink item visible in the image. Respond with ONLY a
			JSON array, no prose, where each element is:
			{"name": "<lowercase singular item name>", "confidence": <0.0-1.0>, "quantity": <count>}
			Respond with [] if no food is visible.
		`)},
	}

	// Strip the "image/" prefix: the SDK wants the bare subtype (png, jpeg).
	format := strings.TrimPrefix(mimeType, "image/")

	res, err := model.GenerateContent(ctx,
		genai.ImageData(format, imageData),
		genai.Text("Detect the food items in this image."),
	)
	if err != nil {
		return nil, fmt.Errorf("error generating detection: %w", err)
	}

	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil || len(res.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from model")
	}

	text, ok := res.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, fmt.Errorf("unexpected response part type %T", res.Candidates[0].Content.Parts[0])
	}

	detections, err := parseDetections(string(text))
	if err != nil {
		return nil, err
	}

	log.Printf("🤖 AI detected %d food item(s)", len(detections))
	return detections, nil
}

// parseDetections decodes the model reply, tolerating markdown code fences
// around the JSON body.
func parseDetections(reply string) ([]Detection, error) {
	cleaned := strings.TrimSpace(reply)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var detections []Detection
	if err := json.Unmarshal([]byte(cleaned), &detections); err != nil {
		return nil, fmt.Errorf("failed to parse detection response: %w", err)
	}

	// The model occasionally omits quantity; default to one item.
	for i := range detections {
		if detections[i].Quantity <= 0 {
			detections[i].Quantity = 1
		}
	}

	return detections, nil
}
