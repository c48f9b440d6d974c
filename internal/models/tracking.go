package models

import (
	"github.com/malclocke/xeroizer/internal/record"
	"github.com/malclocke/xeroizer/internal/schema"
)

// TrackingCategorySchema declares the TrackingCategory model. Inside a line
// item the category carries the chosen option by name; when listed on its
// own it carries every option.
func TrackingCategorySchema() *schema.Schema {
	return schema.New(TrackingCategoryModel).
		GUID("tracking_category_id", schema.APIName("TrackingCategoryID")).
		String("name").
		String("status").
		String("option").
		HasMany("options", schema.Model(OptionModel))
}

// TrackingCategory groups tracking options, e.g. "Region".
type TrackingCategory struct {
	*record.Base
}

func (t *TrackingCategory) TrackingCategoryID() string { return t.String("tracking_category_id") }
func (t *TrackingCategory) Name() string               { return t.String("name") }
func (t *TrackingCategory) Status() string             { return t.String("status") }
func (t *TrackingCategory) Option() string             { return t.String("option") }
func (t *TrackingCategory) Options() []*Option         { return manyOf[*Option](t.Base, "options") }

// OptionSchema declares the Option model.
func OptionSchema() *schema.Schema {
	return schema.New(OptionModel).
		GUID("tracking_option_id", schema.APIName("TrackingOptionID")).
		String("name").
		String("status")
}

// Option is one value of a tracking category, e.g. "North".
type Option struct {
	*record.Base
}

func (o *Option) TrackingOptionID() string { return o.String("tracking_option_id") }
func (o *Option) Name() string             { return o.String("name") }
func (o *Option) Status() string           { return o.String("status") }
