// Package services implements the driving port interfaces.
// Services hold the pipeline logic (normalise, build, load, retrieve,
// recommend) and reach storage, embedders and language models only
// through driven ports.
//
// Services are pure Go with no CGO.
package services
