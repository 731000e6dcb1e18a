package extract

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aoperat/centumbob/internal/cache"
	"github.com/aoperat/centumbob/internal/entity"
	"github.com/aoperat/centumbob/internal/llm"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func gifBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, 1, 1), []color.Color{color.Black, color.White})
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, img, nil))
	return buf.Bytes()
}

type fakeOCR struct {
	text        string
	err         error
	unavailable error
	calls       int
}

func (f *fakeOCR) Recognize(context.Context, []byte, string) (string, error) {
	f.calls++
	return f.text, f.err
}

func (f *fakeOCR) Available() error { return f.unavailable }

type reply struct {
	content string
	err     error
}

type fakeModel struct {
	mu      sync.Mutex
	replies []reply
	prompts []string
	images  []llm.Image
	opts    []llm.CompletionOptions
	noCreds bool
}

func (f *fakeModel) HasCredentials() bool { return !f.noCreds }

func (f *fakeModel) Complete(_ context.Context, prompt string, img llm.Image, opts llm.CompletionOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.images = append(f.images, img)
	f.opts = append(f.opts, opts)
	if len(f.replies) == 0 {
		return "", errors.New("no scripted reply")
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r.content, r.err
}

type recordingSleeper struct {
	waits []time.Duration
	err   error
}

func (s *recordingSleeper) sleep(_ context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return s.err
}

const goodAnswer = `{"price":{"lunch":"7000원","dinner":""},"menus":{
	"월":{"lunch":["불고기","불고기"],"dinner":[]},"화":{"lunch":[],"dinner":[]},
	"수":{"lunch":[],"dinner":[]},"목":{"lunch":[],"dinner":[]},"금":{"lunch":[],"dinner":[]}}}`

func TestExtract_EndToEnd(t *testing.T) {
	ocr := &fakeOCR{text: "월 불고기 7000원"}
	model := &fakeModel{replies: []reply{{content: goodAnswer}}}
	s := &recordingSleeper{}
	ex := NewExtractor(ocr, model, Config{}, nil, WithSleeper(s.sleep))

	res, quality, err := ex.ExtractWithQuality(context.Background(), pngBytes(t), "image/jpeg")
	require.NoError(t, err)

	assert.Equal(t, "7,000원", res.Price.Lunch)
	assert.Equal(t, "", res.Price.Dinner)
	assert.Equal(t, []string{"불고기"}, res.Menus.Mon.Lunch)
	assert.Equal(t, []string{}, res.Menus.Fri.Dinner)
	assert.Equal(t, entity.QualityGood, quality)

	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "월 불고기 7000원")
	assert.Equal(t, "image/png", model.images[0].MimeType)
	assert.Equal(t, llm.CompletionOptions{JSONMode: true, MaxTokens: 2000, Temperature: 0.1}, model.opts[0])
	assert.Empty(t, s.waits)
}

func TestExtract_ZeroTemperature(t *testing.T) {
	model := &fakeModel{replies: []reply{{content: goodAnswer}}}
	ex := NewExtractor(&fakeOCR{}, model, Config{}, nil, WithTemperature(0))

	_, err := ex.Extract(context.Background(), pngBytes(t), "image/png")
	require.NoError(t, err)
	require.Len(t, model.opts, 1)
	assert.Zero(t, model.opts[0].Temperature)
}

func TestExtract_Preconditions(t *testing.T) {
	img := pngBytes(t)
	tests := []struct {
		name  string
		ocr   Recognizer
		model llm.VisionCompleter
		image []byte
		want  error
	}{
		{"no image", &fakeOCR{}, &fakeModel{}, nil, ErrNoImage},
		{"no recognizer", nil, &fakeModel{}, img, ErrOCRUnavailable},
		{"engine missing", &fakeOCR{unavailable: errors.New("not on PATH")}, &fakeModel{}, img, ErrOCRUnavailable},
		{"no model", &fakeOCR{}, nil, img, llm.ErrMissingCredentials},
		{"no credentials", &fakeOCR{}, &fakeModel{noCreds: true}, img, llm.ErrMissingCredentials},
		{"not an image", &fakeOCR{}, &fakeModel{}, []byte("%PDF-1.7"), ErrImageFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := NewExtractor(tt.ocr, tt.model, Config{}, nil)
			_, err := ex.Extract(context.Background(), tt.image, "image/png")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestExtract_OCRFailureIsNotFatal(t *testing.T) {
	ocr := &fakeOCR{err: errors.New("tesseract crashed")}
	model := &fakeModel{replies: []reply{{content: goodAnswer}}}
	ex := NewExtractor(ocr, model, Config{}, nil)

	res, err := ex.Extract(context.Background(), gifBytes(t), "image/gif")
	require.NoError(t, err)
	assert.Equal(t, "7,000원", res.Price.Lunch)
	assert.Contains(t, model.prompts[0], "(OCR 결과 없음)")
}

func TestExtract_RetryOnceThenSucceed(t *testing.T) {
	model := &fakeModel{replies: []reply{{err: errors.New("502 bad gateway")}, {content: goodAnswer}}}
	s := &recordingSleeper{}
	ex := NewExtractor(&fakeOCR{}, model, Config{}, nil, WithSleeper(s.sleep))

	_, err := ex.Extract(context.Background(), pngBytes(t), "image/png")
	require.NoError(t, err)
	assert.Len(t, model.prompts, 2)
	assert.Equal(t, []time.Duration{time.Second}, s.waits)
}

func TestExtract_SecondFailurePropagates(t *testing.T) {
	boom := errors.New("upstream timeout")
	model := &fakeModel{replies: []reply{{err: errors.New("first")}, {err: boom}, {content: goodAnswer}}}
	s := &recordingSleeper{}
	ex := NewExtractor(&fakeOCR{}, model, Config{}, nil, WithSleeper(s.sleep))

	_, err := ex.Extract(context.Background(), pngBytes(t), "image/png")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, model.prompts, 2, "at most two attempts")
	assert.Len(t, s.waits, 1)
}

func TestExtract_CancelledDuringDelay(t *testing.T) {
	model := &fakeModel{replies: []reply{{err: errors.New("first")}, {content: goodAnswer}}}
	s := &recordingSleeper{err: context.Canceled}
	ex := NewExtractor(&fakeOCR{}, model, Config{}, nil, WithSleeper(s.sleep))

	_, err := ex.Extract(context.Background(), pngBytes(t), "image/png")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, model.prompts, 1)
}

func TestExtract_ParseFailureFallsBackToEmpty(t *testing.T) {
	for _, content := range []string{"I cannot read this image.", "[1,2]", "```json\n{\"menus\":5}\n```"} {
		model := &fakeModel{replies: []reply{{content: content}}}
		ex := NewExtractor(&fakeOCR{}, model, Config{}, nil)

		res, quality, err := ex.ExtractWithQuality(context.Background(), pngBytes(t), "image/png")
		require.NoError(t, err, content)
		assert.Equal(t, entity.EmptyExtractionResult(), res, content)
		assert.Equal(t, entity.QualityPoor, quality, content)
	}
}

func TestExtract_CodeFencedAnswer(t *testing.T) {
	model := &fakeModel{replies: []reply{{content: "```json\n" + goodAnswer + "\n```"}}}
	ex := NewExtractor(&fakeOCR{}, model, Config{}, nil)

	res, err := ex.Extract(context.Background(), pngBytes(t), "image/png")
	require.NoError(t, err)
	assert.Equal(t, []string{"불고기"}, res.Menus.Mon.Lunch)
}

func TestExtract_Cache(t *testing.T) {
	ocr := &fakeOCR{}
	model := &fakeModel{replies: []reply{{content: goodAnswer}}}
	c := cache.New[string, entity.ExtractionResult](time.Minute, nil)
	ex := NewExtractor(ocr, model, Config{}, nil, WithCache(c))

	img := pngBytes(t)
	first, err := ex.Extract(context.Background(), img, "image/png")
	require.NoError(t, err)
	second, q, err := ex.ExtractWithQuality(context.Background(), img, "image/png")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, entity.QualityGood, q)
	assert.Equal(t, 1, ocr.calls)
	assert.Len(t, model.prompts, 1)
	assert.Equal(t, 1, c.Len())
}

func TestDetectImageFormat(t *testing.T) {
	mt, err := DetectImageFormat(pngBytes(t))
	require.NoError(t, err)
	assert.Equal(t, "image/png", mt)

	mt, err = DetectImageFormat(gifBytes(t))
	require.NoError(t, err)
	assert.Equal(t, "image/gif", mt)

	_, err = DetectImageFormat([]byte(strings.Repeat("x", 64)))
	assert.ErrorIs(t, err, ErrImageFormat)
}
