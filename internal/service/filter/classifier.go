package filter

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"promptgate/config"
	"promptgate/internal/core"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	comprehendTypes "github.com/aws/aws-sdk-go-v2/service/comprehend/types"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Classifier 回傳 0~1 的有害分數
type Classifier interface {
	Name() core.ClassifierName
	Score(ctx context.Context, text string) (float64, error)
}

// NewClassifier 依 FILTER.CLASSIFIER.PROVIDER 建立分類器
func NewClassifier(logger *zap.Logger, conf *config.Configuration, awsConfig aws.Config) (Classifier, error) {
	provider := core.ClassifierName(conf.Filter.Classifier.Provider)
	timeout := time.Duration(conf.Filter.Classifier.TimeoutMs) * time.Millisecond
	switch provider {
	case core.ClassifierComprehend:
		api := comprehend.NewFromConfig(awsConfig)
		return NewComprehendClassifier(api, conf.Filter.Classifier.LanguageCode, timeout), nil
	case core.ClassifierOpenAI:
		clientConfig := openai.DefaultConfig(conf.Generation.OpenAI.APIKey)
		if conf.Generation.OpenAI.BaseURL != "" {
			clientConfig.BaseURL = conf.Generation.OpenAI.BaseURL + "/v1"
		}
		return NewOpenAIModerationClassifier(openai.NewClientWithConfig(clientConfig), conf.Filter.Classifier.OpenAIModel, timeout), nil
	case core.ClassifierNone, "":
		return NoopClassifier{}, nil
	default:
		logger.Error("unknown classifier provider", zap.String("provider", string(provider)))
		return nil, fmt.Errorf("unknown classifier provider: %s", provider)
	}
}

// NoopClassifier 永遠回傳 0
type NoopClassifier struct{}

func (NoopClassifier) Name() core.ClassifierName { return core.ClassifierNone }

func (NoopClassifier) Score(context.Context, string) (float64, error) { return 0, nil }

// ComprehendAPI 只列出使用到的操作
type ComprehendAPI interface {
	DetectSentiment(ctx context.Context, params *comprehend.DetectSentimentInput, optFns ...func(*comprehend.Options)) (*comprehend.DetectSentimentOutput, error)
}

// Comprehend DetectSentiment 單次上限 5000 bytes
const comprehendMaxBytes = 5000

// ComprehendClassifier 以負面情緒信心值作為分數
type ComprehendClassifier struct {
	api          ComprehendAPI
	languageCode string
	timeout      time.Duration
}

func NewComprehendClassifier(api ComprehendAPI, languageCode string, timeout time.Duration) *ComprehendClassifier {
	if languageCode == "" {
		languageCode = "en"
	}
	return &ComprehendClassifier{api: api, languageCode: languageCode, timeout: timeout}
}

func (c *ComprehendClassifier) Name() core.ClassifierName { return core.ClassifierComprehend }

func (c *ComprehendClassifier) Score(ctx context.Context, text string) (float64, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	out, err := c.api.DetectSentiment(ctx, &comprehend.DetectSentimentInput{
		Text:         aws.String(truncateBytes(text, comprehendMaxBytes)),
		LanguageCode: comprehendTypes.LanguageCode(c.languageCode),
	})
	if err != nil {
		return 0, fmt.Errorf("comprehend detect sentiment: %w", err)
	}
	if out.SentimentScore == nil || out.SentimentScore.Negative == nil {
		return 0, nil
	}
	return float64(*out.SentimentScore.Negative), nil
}

// truncateBytes 截到 max bytes 內，不切斷 UTF-8 字元
func truncateBytes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// ModerationAPI go-openai client 的子集
type ModerationAPI interface {
	Moderations(ctx context.Context, request openai.ModerationRequest) (openai.ModerationResponse, error)
}

// OpenAIModerationClassifier 取所有類別分數的最大值
type OpenAIModerationClassifier struct {
	api     ModerationAPI
	model   string
	timeout time.Duration
}

func NewOpenAIModerationClassifier(api ModerationAPI, model string, timeout time.Duration) *OpenAIModerationClassifier {
	return &OpenAIModerationClassifier{api: api, model: model, timeout: timeout}
}

func (c *OpenAIModerationClassifier) Name() core.ClassifierName { return core.ClassifierOpenAI }

func (c *OpenAIModerationClassifier) Score(ctx context.Context, text string) (float64, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	resp, err := c.api.Moderations(ctx, openai.ModerationRequest{Input: text, Model: c.model})
	if err != nil {
		return 0, fmt.Errorf("openai moderation: %w", err)
	}
	var score float32
	for _, result := range resp.Results {
		s := result.CategoryScores
		for _, v := range []float32{
			s.Hate, s.HateThreatening, s.Harassment, s.HarassmentThreatening,
			s.SelfHarm, s.SelfHarmIntent, s.SelfHarmInstructions,
			s.Sexual, s.SexualMinors, s.Violence, s.ViolenceGraphic,
		} {
			if v > score {
				score = v
			}
		}
	}
	return float64(score), nil
}
