package internal

import (
	esv7 "github.com/elastic/go-elasticsearch/v7"

	"github.com/sanLimbu/taskboard-api/internal"
	"github.com/sanLimbu/taskboard-api/internal/envvar"
)

// NewElasticSearch instantiates the ElasticSearch client using configuration defined in environment variables.
func NewElasticSearch(conf *envvar.Configuration) (es *esv7.Client, err error) {
	url, err := conf.Get("ELASTICSEARCH_URL")
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "conf.Get ELASTICSEARCH_URL")
	}

	cfg := esv7.Config{}
	if url != "" {
		cfg.Addresses = []string{url}
	}

	es, err = esv7.NewClient(cfg)
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "elasticsearch.Open")
	}

	res, err := es.Info()
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "es.Info")
	}

	defer func() {
		err = res.Body.Close()
	}()

	if res.IsError() {
		return nil, internal.NewErrorf(internal.ErrorCodeUnknown, "es.Info %d", res.StatusCode)
	}

	return es, nil
}
