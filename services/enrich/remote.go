package enrich

import (
	"context"
	"encoding/json"
	"fmt"

	"cucatalog-backend/lib/telemetry"

	"github.com/go-resty/resty/v2"
)

// RemoteClassifier consumes the relevance classifiers over HTTP. The
// models themselves live in a sidecar service; this client only
// carries the Predict contract.
type RemoteClassifier struct {
	client *resty.Client
}

func NewRemoteClassifier(baseURL string) RemoteClassifier {
	client := resty.New().SetBaseURL(baseURL)
	telemetry.InstrumentResty(client, "cucatalog.services.enrich.classifier")
	return RemoteClassifier{client: client}
}

type searchPrediction struct {
	Irrelevant       float64 `json:"irrelevant"`
	PossiblyRelevant float64 `json:"possibly_relevant"`
	Relevant         float64 `json:"relevant"`
}

func (c RemoteClassifier) Predict(sample SearchSample) (Scores, error) {
	res, err := c.client.R().
		SetBody(map[string]string{
			"name":        sample.Name,
			"departments": sample.Departments,
			"title":       sample.Title,
			"snippet":     sample.Snippet,
		}).
		Post("/predict/search")
	if err != nil {
		return Scores{}, err
	}
	if res.StatusCode() != 200 {
		return Scores{}, fmt.Errorf("classifier: status %d", res.StatusCode())
	}

	var pred searchPrediction
	err = json.Unmarshal(res.Body(), &pred)
	if err != nil {
		return Scores{}, fmt.Errorf("classifier response: %w", err)
	}
	return Scores{
		Irrelevant:       pred.Irrelevant,
		PossiblyRelevant: pred.PossiblyRelevant,
		Relevant:         pred.Relevant,
	}, nil
}

// ArticleSide returns the second-stage view of the same remote
// classifier service.
func (c RemoteClassifier) ArticleSide() ArticleClassifier {
	return remoteArticleClassifier{client: c.client}
}

type remoteArticleClassifier struct {
	client *resty.Client
}

func (c remoteArticleClassifier) Predict(sample ArticleSample) (Label, error) {
	res, err := c.client.R().
		SetBody(map[string]string{
			"name":  sample.Name,
			"title": sample.Title,
			"text":  sample.Text,
		}).
		Post("/predict/article")
	if err != nil {
		return LabelIrrelevant, err
	}
	if res.StatusCode() != 200 {
		return LabelIrrelevant, fmt.Errorf("classifier: status %d", res.StatusCode())
	}

	var pred struct {
		Relevant bool `json:"relevant"`
	}
	err = json.Unmarshal(res.Body(), &pred)
	if err != nil {
		return LabelIrrelevant, fmt.Errorf("classifier response: %w", err)
	}
	if pred.Relevant {
		return LabelRelevant, nil
	}
	return LabelIrrelevant, nil
}

// RemoteAuthorSource consumes the citation-index bridge service,
// which wraps the upstream scholarly client behind two endpoints.
type RemoteAuthorSource struct {
	client *resty.Client
}

func NewRemoteAuthorSource(baseURL string) RemoteAuthorSource {
	client := resty.New().SetBaseURL(baseURL)
	telemetry.InstrumentResty(client, "cucatalog.services.enrich.scholar")
	return RemoteAuthorSource{client: client}
}

func (s RemoteAuthorSource) SearchAuthors(ctx context.Context, name string) ([]Author, error) {
	res, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("name", name).
		Get("/authors/search")
	if err != nil {
		return nil, err
	}
	if res.StatusCode() != 200 {
		return nil, fmt.Errorf("author search: status %d", res.StatusCode())
	}

	var authors []Author
	err = json.Unmarshal(res.Body(), &authors)
	if err != nil {
		return nil, fmt.Errorf("author search response: %w", err)
	}
	return authors, nil
}

func (s RemoteAuthorSource) FillAuthor(ctx context.Context, scholarID string) (Author, error) {
	res, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("scholar_id", scholarID).
		Get("/authors/fill")
	if err != nil {
		return Author{}, err
	}
	if res.StatusCode() != 200 {
		return Author{}, fmt.Errorf("author fill: status %d", res.StatusCode())
	}

	var author Author
	err = json.Unmarshal(res.Body(), &author)
	if err != nil {
		return Author{}, fmt.Errorf("author fill response: %w", err)
	}
	return author, nil
}
