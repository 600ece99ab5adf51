package github

// Fixed search filters. Forks are excluded at the query level; the fork
// flag on surviving repositories still lands in the catalog entry.
const (
	// QueryPackages finds repositories tagged as Zig packages.
	QueryPackages = "topic:zig-package fork:false"

	// QueryApplications finds repositories tagged as Zig applications.
	QueryApplications = "topic:zig-application fork:false"
)

// searchRepositoriesQuery pages through repository search results, returning
// the lightweight identity tuple that drives reconciliation.
const searchRepositoriesQuery = `
query SearchRepositories($searchQuery: String!, $first: Int!, $cursor: String) {
  search(query: $searchQuery, type: REPOSITORY, first: $first, after: $cursor) {
    pageInfo {
      hasNextPage
      endCursor
    }
    nodes {
      ... on Repository {
        id
        name
        nameWithOwner
        owner { login }
        updatedAt
        defaultBranchRef {
          target { ... on Commit { oid } }
        }
      }
    }
  }
}`

// repositoryDetailsQuery bulk-fetches the full field set for a batch of node
// ids: repository metadata, owner profile (user and organization variants),
// releases with assets, the build manifest blob, and the README in both case
// variants.
const repositoryDetailsQuery = `
query RepositoryDetails($ids: [ID!]!) {
  nodes(ids: $ids) {
    ... on Repository {
      id
      name
      nameWithOwner
      description
      homepageUrl
      stargazerCount
      forkCount
      watchers { totalCount }
      isArchived
      isDisabled
      isFork
      updatedAt
      primaryLanguage { name }
      licenseInfo { spdxId }
      repositoryTopics(first: 10) {
        nodes { topic { name } }
      }
      defaultBranchRef {
        target { ... on Commit { oid } }
      }
      owner {
        login
        avatarUrl
        ... on User {
          name
          bio
          company
          location
          websiteUrl
          twitterUsername
          createdAt
          followers { totalCount }
          following { totalCount }
        }
        ... on Organization {
          name
          orgBio: description
          location
          websiteUrl
          twitterUsername
          createdAt
        }
      }
      releases(first: 20, orderBy: {field: CREATED_AT, direction: DESC}) {
        nodes {
          tagName
          name
          description
          isPrerelease
          publishedAt
          url
          releaseAssets(first: 20) {
            nodes {
              name
              downloadUrl
              size
              contentType
            }
          }
        }
      }
      manifest: object(expression: "HEAD:build.zig.zon") {
        ... on Blob { text }
      }
      readmeUpper: object(expression: "HEAD:README.md") {
        ... on Blob { text }
      }
      readmeLower: object(expression: "HEAD:readme.md") {
        ... on Blob { text }
      }
    }
  }
}`
