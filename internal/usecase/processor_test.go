package usecase

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"resume-formatter/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerifier struct {
	status string
	err    error
	calls  int
}

func (f *fakeVerifier) PaymentStatus(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.status, f.err
}

type fakeRenderer struct {
	pdf   []byte
	err   error
	html  string
	calls int
}

func (f *fakeRenderer) RenderHTMLToPDF(_ context.Context, html string) ([]byte, error) {
	f.calls++
	f.html = html
	return f.pdf, f.err
}

type memStore struct {
	mu     sync.Mutex
	files  map[string][]byte
	putErr error
}

func newMemStore() *memStore { return &memStore{files: map[string][]byte{}} }

func (m *memStore) Put(_ context.Context, name string, data []byte, _ string) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = data
	return nil
}

func (m *memStore) Get(_ context.Context, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[name]
	if !ok {
		return nil, domain.NewError("get", domain.ErrNotFound, "file not found", nil)
	}
	return data, nil
}

type fakeNotifier struct {
	err  error
	to   []string
	size int
}

func (f *fakeNotifier) SendArtifact(_ context.Context, to string, _ domain.Artifact, data []byte) error {
	f.to = append(f.to, to)
	f.size = len(data)
	return f.err
}

var fixedNow = func() time.Time { return time.UnixMilli(1700000000000) }

func newTestProcessor(v *fakeVerifier, r *fakeRenderer, s *memStore, opts ...Option) *Processor {
	opts = append([]Option{WithClock(fixedNow)}, opts...)
	return NewProcessor(v, r, s, opts...)
}

func paidRequest() domain.GenerateRequest {
	return domain.GenerateRequest{
		PaymentID:  "pay_ABC123",
		ResumeText: janeResume,
		TargetRole: "Backend Engineer",
	}
}

func TestGenerateStoresArtifact(t *testing.T) {
	v := &fakeVerifier{status: domain.PaymentCaptured}
	r := &fakeRenderer{pdf: []byte("%PDF-1.7 fake")}
	s := newMemStore()
	p := newTestProcessor(v, r, s)

	art, err := p.Generate(context.Background(), paidRequest())
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^resume_1700000000000_pay_ABC123_[0-9a-f]{8}\.pdf$`), art.Name)
	assert.Equal(t, "/download/"+art.Name, art.DownloadURL)
	assert.Equal(t, int64(len(r.pdf)), art.Size)
	assert.Equal(t, "application/pdf", art.ContentType)
	assert.Equal(t, r.pdf, s.files[art.Name])
	assert.Contains(t, r.html, "<title>Jane Doe</title>")
	assert.Equal(t, 1, v.calls)
}

func TestGenerateAcceptsAuthorizedPayment(t *testing.T) {
	s := newMemStore()
	p := newTestProcessor(&fakeVerifier{status: domain.PaymentAuthorized}, &fakeRenderer{pdf: []byte("%PDF")}, s,
		WithDownloadPrefix("https://cv.example.com/download/"))

	art, err := p.Generate(context.Background(), paidRequest())
	require.NoError(t, err)
	assert.Equal(t, "https://cv.example.com/download/"+art.Name, art.DownloadURL)
	assert.Len(t, s.files, 1)
}

func TestGenerateUnverifiedPaymentWritesNothing(t *testing.T) {
	texts := []string{janeResume, "", "   "}
	for _, text := range texts {
		for _, v := range []*fakeVerifier{
			{status: "created"},
			{status: "failed"},
			{err: errors.New("gateway timeout")},
		} {
			r := &fakeRenderer{pdf: []byte("%PDF")}
			s := newMemStore()
			p := newTestProcessor(v, r, s)

			req := paidRequest()
			req.ResumeText = text
			_, err := p.Generate(context.Background(), req)

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrPaymentUnverified)
			assert.Empty(t, s.files)
			assert.Zero(t, r.calls)
		}
	}
}

func TestGenerateRequiresPaymentID(t *testing.T) {
	v := &fakeVerifier{status: domain.PaymentCaptured}
	p := newTestProcessor(v, &fakeRenderer{}, newMemStore())

	req := paidRequest()
	req.PaymentID = "  "
	_, err := p.Generate(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, domain.Message(err, ""), "payment_id is required")
	assert.Zero(t, v.calls)
}

func TestGenerateRejectsMalformedPaymentID(t *testing.T) {
	for _, id := range []string{"pay_1/../orders", "order_1", "pay_", "pay 1"} {
		v := &fakeVerifier{status: domain.PaymentCaptured}
		p := newTestProcessor(v, &fakeRenderer{}, newMemStore())

		req := paidRequest()
		req.PaymentID = id
		_, err := p.Generate(context.Background(), req)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, id)
		assert.Zero(t, v.calls, id)
	}
}

func TestGenerateTextLengthCheckedAfterPayment(t *testing.T) {
	long := strings.Repeat("a", MaxResumeTextLen+1)

	s := newMemStore()
	req := paidRequest()
	req.ResumeText = long
	_, err := newTestProcessor(&fakeVerifier{status: "created"}, &fakeRenderer{}, s).Generate(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrPaymentUnverified)

	r := &fakeRenderer{pdf: []byte("%PDF")}
	_, err = newTestProcessor(&fakeVerifier{status: domain.PaymentCaptured}, r, s).Generate(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, domain.Message(err, ""), "too long")
	assert.Zero(t, r.calls)
	assert.Empty(t, s.files)

	_, _, err = newTestProcessor(&fakeVerifier{}, &fakeRenderer{}, s).Preview(long, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGenerateRejectsEmptyTextAfterPayment(t *testing.T) {
	s := newMemStore()
	r := &fakeRenderer{pdf: []byte("%PDF")}
	p := newTestProcessor(&fakeVerifier{status: domain.PaymentCaptured}, r, s)

	req := paidRequest()
	req.ResumeText = " \n "
	_, err := p.Generate(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, s.files)
	assert.Zero(t, r.calls)
}

func TestGenerateRenderingFailure(t *testing.T) {
	s := newMemStore()
	p := newTestProcessor(&fakeVerifier{status: domain.PaymentCaptured}, &fakeRenderer{err: errors.New("chrome crashed")}, s)

	_, err := p.Generate(context.Background(), paidRequest())
	assert.ErrorIs(t, err, domain.ErrRendering)
	assert.Equal(t, "generic", domain.Message(err, "generic"), "engine detail must not reach the caller")
	assert.Empty(t, s.files)
}

func TestGenerateStorageFailure(t *testing.T) {
	s := newMemStore()
	s.putErr = errors.New("disk full")
	p := newTestProcessor(&fakeVerifier{status: domain.PaymentCaptured}, &fakeRenderer{pdf: []byte("%PDF")}, s)

	_, err := p.Generate(context.Background(), paidRequest())
	assert.ErrorIs(t, err, domain.ErrStorage)
}

func TestGenerateNotifies(t *testing.T) {
	n := &fakeNotifier{}
	p := newTestProcessor(&fakeVerifier{status: domain.PaymentCaptured}, &fakeRenderer{pdf: []byte("%PDF-1.7")}, newMemStore(), WithNotifier(n))

	req := paidRequest()
	req.Email = " jane@x.com "
	_, err := p.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"jane@x.com"}, n.to)
	assert.Equal(t, len("%PDF-1.7"), n.size)
}

func TestGenerateNotifierFailureIsNotSurfaced(t *testing.T) {
	n := &fakeNotifier{err: errors.New("smtp refused")}
	s := newMemStore()
	p := newTestProcessor(&fakeVerifier{status: domain.PaymentCaptured}, &fakeRenderer{pdf: []byte("%PDF")}, s, WithNotifier(n))

	req := paidRequest()
	req.Email = "jane@x.com"
	art, err := p.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, s.files, art.Name)
	assert.Len(t, n.to, 1)
}

func TestGenerateSkipsNotifierWithoutEmail(t *testing.T) {
	n := &fakeNotifier{}
	p := newTestProcessor(&fakeVerifier{status: domain.PaymentCaptured}, &fakeRenderer{pdf: []byte("%PDF")}, newMemStore(), WithNotifier(n))

	_, err := p.Generate(context.Background(), paidRequest())
	require.NoError(t, err)
	assert.Empty(t, n.to)
}

func TestArtifactNameSanitizesPaymentID(t *testing.T) {
	p := newTestProcessor(&fakeVerifier{}, &fakeRenderer{}, newMemStore())
	name := p.artifactName("../pay 1/../x")
	assert.True(t, ValidArtifactName(name), name)
	assert.Regexp(t, `^resume_1700000000000_pay1x_[0-9a-f]{8}\.pdf$`, name)
}

func TestFetch(t *testing.T) {
	s := newMemStore()
	s.files["resume_1_pay_1_abcdef12.pdf"] = []byte("%PDF")
	p := newTestProcessor(&fakeVerifier{}, &fakeRenderer{}, s)

	data, err := p.Fetch(context.Background(), "resume_1_pay_1_abcdef12.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF"), data)

	for _, name := range []string{"", "../etc/passwd", "a/b.pdf", "..", "resume_2.pdf", "x y.pdf"} {
		_, err := p.Fetch(context.Background(), name)
		assert.ErrorIs(t, err, domain.ErrNotFound, name)
	}
}

func TestPreview(t *testing.T) {
	p := newTestProcessor(&fakeVerifier{}, &fakeRenderer{}, newMemStore())

	doc, fields, err := p.Preview(janeResume, "Backend Engineer")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", fields.Name)
	assert.Contains(t, doc.String(), "NAME: Jane Doe")
	assert.Contains(t, doc.String(), "SKILLS:\n• Python\n• Go\n• SQL")

	_, _, err = p.Preview("", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
