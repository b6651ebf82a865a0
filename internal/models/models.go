package models

import (
	"errors"
	"fmt"
	"os"
)

// Status is the in-memory publish state of a record. It is never persisted
// with the dataset.
type Status string

const (
	StatusPending        Status = "pending"
	StatusUploaded       Status = "uploaded"
	StatusUploadFailed   Status = "upload_failed"
	StatusAnnotated      Status = "annotated"
	StatusAnnotateFailed Status = "annotate_failed"
)

// Field names of the descriptive metadata schema, in dataset column order.
const (
	FieldPhotographer      = "photographer"
	FieldTitle             = "title"
	FieldDescription       = "description"
	FieldDepictedPeople    = "depicted_people"
	FieldDepictedPlace     = "depicted_place"
	FieldDate              = "date"
	FieldMedium            = "medium"
	FieldDimensions        = "dimensions"
	FieldInstitution       = "institution"
	FieldDepartment        = "department"
	FieldReferences        = "references"
	FieldObjectHistory     = "object_history"
	FieldExhibitionHistory = "exhibition_history"
	FieldCreditLine        = "credit_line"
	FieldInscriptions      = "inscriptions"
	FieldNotes             = "notes"
	FieldAccessionNumber   = "accession_number"
	FieldSource            = "source"
	FieldPermission        = "permission"
	FieldOtherVersions     = "other_versions"
	FieldLicense           = "license"
	FieldPartnership       = "partnership"
	FieldCategories        = "categories"
)

// FieldNames is the fixed descriptive field schema.
var FieldNames = []string{
	FieldPhotographer,
	FieldTitle,
	FieldDescription,
	FieldDepictedPeople,
	FieldDepictedPlace,
	FieldDate,
	FieldMedium,
	FieldDimensions,
	FieldInstitution,
	FieldDepartment,
	FieldReferences,
	FieldObjectHistory,
	FieldExhibitionHistory,
	FieldCreditLine,
	FieldInscriptions,
	FieldNotes,
	FieldAccessionNumber,
	FieldSource,
	FieldPermission,
	FieldOtherVersions,
	FieldLicense,
	FieldPartnership,
	FieldCategories,
}

var (
	ErrNoLocalPath = errors.New("record has no local path")
	ErrNoLicense   = errors.New("record has no license")
)

// AssetRecord is one harvested page/image and everything needed to publish it.
type AssetRecord struct {
	LocalPath     string            `json:"local_path"`
	TargetName    string            `json:"target_name"`
	SourceItemID  string            `json:"source_item_id,omitempty"`
	SourceTitleID string            `json:"source_title_id,omitempty"`
	SourcePageID  string            `json:"source_page_id,omitempty"`
	Fields        map[string]string `json:"fields"`
	Status        Status            `json:"-"`
}

// NewAssetRecord returns a pending record with every schema field present.
func NewAssetRecord(localPath, targetName string) AssetRecord {
	fields := make(map[string]string, len(FieldNames))
	for _, name := range FieldNames {
		fields[name] = ""
	}
	return AssetRecord{
		LocalPath:  localPath,
		TargetName: targetName,
		Fields:     fields,
		Status:     StatusPending,
	}
}

// Field returns the named descriptive field, or "" if unset.
func (r AssetRecord) Field(name string) string {
	if r.Fields == nil {
		return ""
	}
	return r.Fields[name]
}

// TemplateFields returns the full field mapping handed to the description
// template. Every schema key is present so templates never see a missing key.
func (r AssetRecord) TemplateFields() map[string]string {
	fields := make(map[string]string, len(FieldNames)+2)
	for _, name := range FieldNames {
		fields[name] = r.Field(name)
	}
	for k, v := range r.Fields {
		fields[k] = v
	}
	fields["local_path"] = r.LocalPath
	fields["target_name"] = r.TargetName
	return fields
}

// Eligible reports whether the record may be published.
func (r AssetRecord) Eligible() error {
	if r.LocalPath == "" {
		return ErrNoLocalPath
	}
	info, err := os.Stat(r.LocalPath)
	if err != nil {
		return fmt.Errorf("unresolved local path %s: %w", r.LocalPath, err)
	}
	if info.IsDir() {
		return fmt.Errorf("local path %s is a directory", r.LocalPath)
	}
	if r.TargetName == "" {
		return errors.New("record has no target name")
	}
	if r.Field(FieldLicense) == "" {
		return ErrNoLicense
	}
	return nil
}
