package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/flarexio/devguide"
	"github.com/flarexio/devguide/analysis"
	"github.com/flarexio/devguide/conf"
	"github.com/flarexio/devguide/fixer"
	"github.com/flarexio/devguide/llm"
	"github.com/flarexio/devguide/persistence"
)

type devguideTestSuite struct {
	suite.Suite
	cfg  *conf.Config
	svc  devguide.Service
	repo analysis.Repository
}

func (suite *devguideTestSuite) SetupSuite() {
	for _, key := range []string{
		"OPENROUTER_API_KEY", "OPENROUTER_MODEL",
		"GOOGLE_API_KEY", "GOOGLE_MODEL",
		"DEVGUIDE_JWT_PRIVKEY",
	} {
		suite.T().Setenv(key, "")
	}

	conf.Path = "../.."
	conf.Port = 8000

	cfg, err := conf.LoadConfig()
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	cfg.Persistence.InMem = true

	repo, err := persistence.NewAnalysisRepository(cfg.Persistence)
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	svc, err := NewService(context.Background(), cfg, repo, nil)
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	suite.cfg = cfg
	suite.svc = svc
	suite.repo = repo
}

func (suite *devguideTestSuite) TestStatus() {
	suite.Equal(devguide.Status{
		llm.OpenRouter: {Configured: false, Model: llm.DefaultOpenRouterModel},
		llm.Google:     {Configured: false, Model: llm.DefaultGoogleModel},
	}, suite.svc.Status())
}

func (suite *devguideTestSuite) TestAnalyzeAndList() {
	a, err := suite.svc.Analyze("public static void main(String[] args) {\n  System.out.println(1);\n}", "auto")
	suite.Require().NoError(err)
	suite.Equal(analysis.Java, a.Language)

	analyses, err := suite.svc.Analyses(0)
	suite.NoError(err)
	suite.NotEmpty(analyses)
	suite.Equal(a.ID, analyses[0].ID)
}

func (suite *devguideTestSuite) TestFixWithoutKeys() {
	result, err := suite.svc.Fix(context.Background(), "let x = undefined_variable;", "javascript")
	suite.Require().NoError(err)

	suite.Equal(fixer.SourceHeuristic, result.Source)
	suite.Equal([]fixer.Attempt{
		{Source: llm.OpenRouter, Error: "missing_api_key"},
		{Source: llm.Google, Error: "missing_api_key"},
		{Source: fixer.SourceHeuristic, Applied: false},
	}, result.Attempts)
}

func (suite *devguideTestSuite) TestLocalAnalyze() {
	a := localAnalyze("x = 1\n\n", analysis.Auto)

	suite.Equal("x = 1", a.Code)
	suite.NoError(printAnalysis(a, "json"))
	suite.Error(printAnalysis(a, "pdf"))
}

func (suite *devguideTestSuite) TearDownSuite() {
	if suite.repo != nil {
		suite.repo.Close()
	}
}

func TestDevguideTestSuite(t *testing.T) {
	suite.Run(t, new(devguideTestSuite))
}
