// Package models defines the domain entities for the bucket client.
//
// The package contains two categories of types:
//
// 1. Immutable value objects with pure transition methods returning new instances:
//   - [LoadingState] : status of a single asynchronous operation
//   - [PostSearchQuery] : post search filters, order and random seed
//   - [Upload] / [UploadJob] : per-file upload records and their aggregate
//   - [CreatePostData] : post metadata staged alongside an upload job
//
// 2. Server-sourced read-only records mapped from the bucket API:
//   - [Bucket], [Auth], [Post], [PostDetail], [SearchPost]
//   - [Media], [Tag], [TagGroup], [SearchPostItem], [PostItemDetail]
//   - [Page] / [PageParams] for pagination
//
// Value objects are never mutated in place; every state change produces a new
// value so stale references stay valid for concurrent readers.
package models
