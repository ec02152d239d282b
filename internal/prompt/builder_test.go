package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dxaginfo/content-ideation-ai-platform/internal/model"
)

func TestBuild_FullRequest(t *testing.T) {
	got := Build(model.GenerationRequest{
		ContentType: model.ContentTypeBlog,
		Topic:       "sourdough baking",
		Audience:    "beginners",
		Tone:        model.ToneFriendly,
		Count:       3,
	})

	assert.True(t, strings.HasPrefix(got,
		"Generate 3 creative and engaging blog content ideas about sourdough baking for beginners. The tone should be friendly."),
		"unexpected prefix: %q", got)
	assert.Contains(t, got, "Include potential keywords for SEO.")
	assert.True(t, strings.HasSuffix(got,
		"Format each idea as a JSON object with 'title', 'description', and 'keywords' fields."))
}

// TestBuild_OmitsAudience は対象読者が空の場合に " for " 句が出力されないことを確認する。
func TestBuild_OmitsAudience(t *testing.T) {
	for _, audience := range []string{"", "   "} {
		got := Build(model.GenerationRequest{
			ContentType: model.ContentTypeVideo,
			Topic:       "home workouts",
			Audience:    audience,
			Tone:        model.ToneCasual,
			Count:       2,
		})
		assert.NotContains(t, got, " for ")
		assert.Contains(t, got, "about home workouts. The tone should be casual.")
	}
}

func TestBuild_Defaults(t *testing.T) {
	got := Build(model.GenerationRequest{
		ContentType: model.ContentTypeSocial,
		Topic:       "coffee",
	})

	assert.Contains(t, got, "Generate 5 creative")
	assert.Contains(t, got, "The tone should be professional.")
}

func TestBuild_TypeInstructions(t *testing.T) {
	tests := []struct {
		contentType model.ContentType
		want        string
	}{
		{model.ContentTypeBlog, "catchy title"},
		{model.ContentTypeVideo, "visual elements or hooks"},
		{model.ContentTypeSocial, "(Instagram, Twitter, LinkedIn, etc.)"},
	}

	for _, tt := range tests {
		t.Run(string(tt.contentType), func(t *testing.T) {
			got := Build(model.GenerationRequest{ContentType: tt.contentType, Topic: "x"})
			assert.Contains(t, got, tt.want)
			for other, instruction := range typeInstructions {
				if other != tt.contentType {
					assert.NotContains(t, got, instruction)
				}
			}
		})
	}
}

func TestBuild_VerbatimTopicAndTone(t *testing.T) {
	topics := []string{"AI & ML", "résumé tips", `quotes "like this"`, "50% off {sale}"}
	for _, topic := range topics {
		for _, tone := range []model.Tone{model.ToneHumorous, model.ToneInformative} {
			got := Build(model.GenerationRequest{ContentType: model.ContentTypeBlog, Topic: topic, Tone: tone, Count: 1})
			assert.Contains(t, got, "about "+topic)
			assert.Contains(t, got, "The tone should be "+string(tone)+".")
		}
	}
}

func TestBuild_Deterministic(t *testing.T) {
	req := model.GenerationRequest{ContentType: model.ContentTypeVideo, Topic: "travel", Audience: "students", Count: 4}
	assert.Equal(t, Build(req), Build(req))
}
