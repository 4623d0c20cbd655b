package web

import (
	"strings"

	"frontend/apiclient"
	"frontend/models"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gofiber/fiber/v2"
)

// DefaultPageModelID is the analysis model preselected on the embedding page.
const DefaultPageModelID = "prebuilt-read"

type Pages struct {
	api    *apiclient.Client
	logger log.Logger
}

func NewPages(api *apiclient.Client, logger log.Logger) *Pages {
	return &Pages{
		api:    api,
		logger: log.With(logger, "component", "pages"),
	}
}

func (p *Pages) RegisterRoutes(r fiber.Router) {
	r.Get("/", p.Index)

	app := r.Group("/app")
	app.Get("/solution", p.SolutionForm)
	app.Post("/solution", p.Solution)
	app.Get("/upload", p.UploadForm)
	app.Post("/upload", p.Upload)
	app.Get("/embedding", p.Embedding)
	app.Post("/embedding/process", p.ProcessOne)
	app.Post("/embedding/process-batch", p.ProcessSelected)
}

func (p *Pages) Index(c *fiber.Ctx) error {
	return c.Render("index", fiber.Map{"Title": "Home"}, Layout)
}

func (p *Pages) SolutionForm(c *fiber.Ctx) error {
	return c.Render("solution", fiber.Map{"Title": "Solution Generator"}, Layout)
}

func (p *Pages) Solution(c *fiber.Ctx) error {
	query := c.FormValue("query")
	data := fiber.Map{"Title": "Solution Generator", "Query": query}

	if strings.TrimSpace(query) == "" {
		data["Error"] = "Please enter Query Input"
		return c.Render("solution", data, Layout)
	}

	result, err := p.api.GetSolution(c.UserContext(), query)
	if err != nil {
		level.Warn(p.logger).Log("msg", "solution lookup failed", "err", err)
		data["Error"] = errorText(err)
	} else {
		data["Solution"] = result
	}
	return c.Render("solution", data, Layout)
}

func (p *Pages) UploadForm(c *fiber.Ctx) error {
	return c.Render("upload", fiber.Map{"Title": "Document Upload"}, Layout)
}

func (p *Pages) Upload(c *fiber.Ctx) error {
	data := fiber.Map{"Title": "Document Upload"}

	fileHeader, err := c.FormFile("file")
	if err != nil || fileHeader.Filename == "" {
		data["Error"] = "Select a file to upload."
		return c.Render("upload", data, Layout)
	}

	file, err := fileHeader.Open()
	if err != nil {
		data["Error"] = errorText(err)
		return c.Render("upload", data, Layout)
	}
	defer file.Close()

	result, err := p.api.UploadDocument(c.UserContext(), fileHeader.Filename, fileHeader.Header.Get(fiber.HeaderContentType), file)
	if err != nil {
		level.Warn(p.logger).Log("msg", "upload failed", "filename", fileHeader.Filename, "err", err)
		data["Error"] = errorText(err)
	} else {
		data["Result"] = result
	}
	return c.Render("upload", data, Layout)
}

// embeddingPage holds the state the embedding page renders.
type embeddingPage struct {
	Title          string
	Prefix         string
	ModelID        string
	EmbeddingModel string
	Blobs          []string
	Selected       map[string]bool
	Error          string
	Single         *models.EmbeddingProcessResult
	Batch          *models.EmbeddingBatchResult
	Raw            any
	RawStatus      string
}

func (p *Pages) embeddingState(modelID, embeddingModel, prefix string) *embeddingPage {
	page := &embeddingPage{
		Title:          "Document Embedding",
		Prefix:         prefix,
		ModelID:        modelID,
		EmbeddingModel: embeddingModel,
		Selected:       map[string]bool{},
	}
	if page.ModelID == "" {
		page.ModelID = DefaultPageModelID
	}
	if page.EmbeddingModel == "" {
		page.EmbeddingModel = models.DefaultEmbeddingModel
	}
	return page
}

// loadBlobs fills the blob list; a listing failure becomes the page error.
func (p *Pages) loadBlobs(c *fiber.Ctx, page *embeddingPage) {
	list, err := p.api.ListBlobs(c.UserContext(), page.Prefix)
	if err != nil {
		level.Warn(p.logger).Log("msg", "list blobs failed", "prefix", page.Prefix, "err", err)
		if page.Error == "" {
			page.Error = errorText(err)
		}
		return
	}
	page.Blobs = list.Blobs
}

func (p *Pages) Embedding(c *fiber.Ctx) error {
	page := p.embeddingState(c.Query("model_id"), c.Query("embedding_model"), c.Query("prefix"))
	p.loadBlobs(c, page)
	return c.Render("embedding", page, Layout)
}

func (p *Pages) ProcessOne(c *fiber.Ctx) error {
	page := p.embeddingState(c.FormValue("model_id"), c.FormValue("embedding_model"), c.FormValue("prefix"))
	p.markSelected(c, page)

	result, err := p.api.ProcessDocument(c.UserContext(), c.FormValue("blob_name"), page.ModelID, page.EmbeddingModel)
	switch {
	case err != nil:
		page.Error = errorText(err)
	case result.Result.BlobName != "":
		page.Single = result
	default:
		page.Raw, page.RawStatus = result, result.Status
	}

	p.loadBlobs(c, page)
	return c.Render("embedding", page, Layout)
}

func (p *Pages) ProcessSelected(c *fiber.Ctx) error {
	page := p.embeddingState(c.FormValue("model_id"), c.FormValue("embedding_model"), c.FormValue("prefix"))
	selected := p.markSelected(c, page)

	if len(selected) == 0 {
		page.Error = "Please select at least one document"
		p.loadBlobs(c, page)
		return c.Render("embedding", page, Layout)
	}

	result, err := p.api.ProcessBatchDocuments(c.UserContext(), selected, page.ModelID, page.EmbeddingModel)
	switch {
	case err != nil:
		page.Error = errorText(err)
	case result.Results != nil:
		page.Batch = result
	default:
		page.Raw, page.RawStatus = result, result.Status
	}

	p.loadBlobs(c, page)
	return c.Render("embedding", page, Layout)
}

// markSelected returns the checked blobs in form order and remembers them for re-rendering.
func (p *Pages) markSelected(c *fiber.Ctx, page *embeddingPage) []string {
	var selected []string
	for _, raw := range c.Request().PostArgs().PeekMulti("blob_names") {
		name := string(raw)
		if name == "" || page.Selected[name] {
			continue
		}
		page.Selected[name] = true
		selected = append(selected, name)
	}
	return selected
}
