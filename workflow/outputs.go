package workflow

import (
	"fmt"
	"reflect"

	"github.com/viant/structology/conv"

	"github.com/CodeGandee/invokeai-go-client/extension"
	"github.com/CodeGandee/invokeai-go-client/model/field"
	"github.com/CodeGandee/invokeai-go-client/queue"
)

// NodeOutputs lists the images one output-capable node produced in a
// completed run.  Images is never nil; a node that produced nothing reports
// an empty slice.
type NodeOutputs struct {
	NodeID   string
	NodeType string
	Images   []field.ImageRef
}

// ImageLister is implemented by result payload types that carry images.
// Custom payload types registered through extension.Types contribute their
// images by implementing it.
type ImageLister interface {
	ImageRefs() []field.ImageRef
}

// Wire shapes of the per-node result payloads the queue reports.  They are
// registered by their wire type tag and decoded through the converter, so
// payload variants with extra keys still map.
type (
	imageOutput struct {
		Image field.ImageRef `json:"image" name:"image"`
	}
	imageCollectionOutput struct {
		Collection []field.ImageRef `json:"collection" name:"collection"`
	}
)

func (o imageOutput) ImageRefs() []field.ImageRef {
	if o.Image.ImageName == "" {
		return nil
	}
	return []field.ImageRef{o.Image}
}

func (o imageCollectionOutput) ImageRefs() []field.ImageRef {
	var images []field.ImageRef
	for _, ref := range o.Collection {
		if ref.ImageName != "" {
			images = append(images, ref)
		}
	}
	return images
}

// outputDecoder maps raw result payloads onto registered wire types.
type outputDecoder struct {
	types     *extension.Types
	converter *conv.Converter
}

func newOutputDecoder(types *extension.Types) *outputDecoder {
	if types == nil {
		types = extension.NewTypes()
	}
	if types.Lookup("image_output") == nil {
		types.RegisterNamed("image_output", imageOutput{})
	}
	if types.Lookup("image_collection_output") == nil {
		types.RegisterNamed("image_collection_output", imageCollectionOutput{})
	}
	return &outputDecoder{
		types:     types,
		converter: conv.NewConverter(conv.DefaultOptions()),
	}
}

// images extracts the image references from one raw node payload.  Payloads
// whose type tag is not registered yield no images; that is a payload this
// client does not understand, not an error.
func (d *outputDecoder) images(raw map[string]interface{}) ([]field.ImageRef, error) {
	typeTag, _ := raw["type"].(string)
	if typeTag == "" {
		return nil, nil
	}
	registered := d.types.Lookup(typeTag)
	if registered == nil {
		return nil, nil
	}
	instance := reflect.New(registered.Type).Interface()
	if err := d.converter.Convert(raw, instance); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", typeTag, err)
	}
	if lister, ok := instance.(ImageLister); ok {
		return lister.ImageRefs(), nil
	}
	return nil, nil
}

// MapOutputs resolves a completed run's results to the document's
// output-capable nodes, in node declaration order.  Every output-capable
// node appears in the result even when it produced nothing.  A failed run
// maps to *queue.JobFailedError carrying the remote message.
func (h *Handle) MapOutputs(snapshot *queue.Snapshot) ([]*NodeOutputs, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("snapshot was nil")
	}
	switch snapshot.Status {
	case queue.StatusFailed:
		return nil, &queue.JobFailedError{ItemID: snapshot.ItemID, Reason: snapshot.Error}
	case queue.StatusCompleted:
	default:
		return nil, fmt.Errorf("job %s not completed: status %s", snapshot.ItemID, snapshot.Status)
	}
	decoder := newOutputDecoder(h.types)
	var outputs []*NodeOutputs
	for _, node := range h.document.OutputNodes() {
		entry := &NodeOutputs{
			NodeID:   node.NodeID,
			NodeType: node.NodeType,
			Images:   []field.ImageRef{},
		}
		if raw := snapshot.Results[node.NodeID]; raw != nil {
			images, err := decoder.images(raw)
			if err != nil {
				return nil, err
			}
			entry.Images = append(entry.Images, images...)
		}
		outputs = append(outputs, entry)
	}
	return outputs, nil
}
