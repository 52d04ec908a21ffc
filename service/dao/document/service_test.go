package document

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CodeGandee/invokeai-go-client/model"
	"github.com/CodeGandee/invokeai-go-client/service/dao"
)

const workflowJSON = `{
  "name": "upscale",
  "nodes": {
    "load": {"type": "image", "fields": {"image": {"name": "image", "type": "image"}}},
    "esrgan": {"type": "esrgan", "fields": {"scale": {"name": "scale", "type": "integer", "value": 2}}},
    "save": {"type": "save_image", "fields": {"board": {"name": "board", "type": "board"}}}
  }
}`

const workflowYAML = `name: upscale
nodes:
  load:
    type: image
    fields:
      image: {name: image, type: image}
  esrgan:
    type: esrgan
    fields:
      scale: {name: scale, type: integer, value: 2}
  save:
    type: save_image
    fields:
      board: {name: board, type: board}
`

func writeTemp(t *testing.T, name, content string) string {
	location := filepath.Join(t.TempDir(), name)
	assert.Nil(t, os.WriteFile(location, []byte(content), 0o644))
	return location
}

func TestLoadCachesAndRefreshReloads(t *testing.T) {
	service := New()
	ctx := context.Background()
	location := writeTemp(t, "upscale.json", workflowJSON)

	document, err := service.Load(ctx, location)
	if !assert.Nil(t, err) {
		return
	}
	assert.EqualValues(t, "upscale", document.Name)
	assert.EqualValues(t, []string{"load", "esrgan", "save"}, document.NodeOrder)

	// a changed file is not observed until Refresh
	assert.Nil(t, os.WriteFile(location, []byte(`{"nodes": {"only": {"type": "noise"}}}`), 0o644))
	cached, err := service.Load(ctx, location)
	assert.Nil(t, err)
	assert.EqualValues(t, 3, len(cached.Nodes))

	refreshed, err := service.Refresh(ctx, location)
	assert.Nil(t, err)
	assert.EqualValues(t, 1, len(refreshed.Nodes))
	assert.EqualValues(t, "upscale", refreshed.Name, "name falls back to the file base name")
}

func TestLoadYAMLKeepsNodeOrder(t *testing.T) {
	service := New()
	location := writeTemp(t, "upscale.yaml", workflowYAML)

	document, err := service.Load(context.Background(), location)
	if !assert.Nil(t, err) {
		return
	}
	assert.EqualValues(t, []string{"load", "esrgan", "save"}, document.NodeOrder)
	assert.EqualValues(t, 2, document.Node("esrgan").Field("scale").Value)
}

func TestLoadErrors(t *testing.T) {
	service := New()
	ctx := context.Background()

	_, err := service.Load(ctx, "")
	assert.ErrorIs(t, err, dao.ErrInvalidID)

	_, err = service.Load(ctx, filepath.Join(t.TempDir(), "missing.json"))
	assert.NotNil(t, err)

	var malformed *model.MalformedWorkflowError
	_, err = service.Load(ctx, writeTemp(t, "garbage.json", "not json"))
	assert.ErrorAs(t, err, &malformed)

	_, err = service.Load(ctx, writeTemp(t, "empty.json", `{"nodes": {}}`))
	assert.ErrorAs(t, err, &malformed, "a workflow without nodes is malformed")
}

func TestLoadExpandsEnvLocation(t *testing.T) {
	service := New()
	location := writeTemp(t, "upscale.json", workflowJSON)
	t.Setenv("WORKFLOW_HOME", filepath.Dir(location))

	document, err := service.Load(context.Background(), "${env.WORKFLOW_HOME}/upscale.json")
	if assert.Nil(t, err) {
		assert.EqualValues(t, "upscale", document.Name)
	}
}

func TestUpsertAndLookup(t *testing.T) {
	service := New()

	assert.ErrorIs(t, service.Upsert("", model.NewDocument("x")), dao.ErrInvalidID)
	assert.ErrorIs(t, service.Upsert("key", nil), dao.ErrNilEntity)

	document := model.NewDocument("programmatic")
	document.AddNode("n1", "noise")
	assert.Nil(t, service.Upsert("key", document))

	found, err := service.Lookup("key")
	assert.Nil(t, err)
	assert.Same(t, document, found)

	_, err = service.Lookup("missing")
	assert.ErrorIs(t, err, dao.ErrNotFound)
}
