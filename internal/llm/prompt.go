package llm

import (
	"fmt"
	"sort"
	"strings"
)

const DefaultVideoPrompt = "Summarize this video."

// SynthesisPrompt is the final instruction of a multi-source orchestration
// request. The per-source markers before it are what the source_index values
// refer to.
const SynthesisPrompt = `Role: You are a Holistic Intelligence Architect.
Objective: Ingest multiple diverse sources (YouTube videos, PDFs, web articles and posts) and synthesize them into a single, high-density "Knowledge Core".

CRITICAL REQUIREMENT: BALANCED SYNTHESIS.
- Do not let video content overshadow the text-based articles or PDFs.
- Cross-reference every source. If one source says X and another says Y, combine or contrast them.
- Every source provided must contribute specific evidence and insights to the result.
- This Knowledge Core is the ONLY source of truth for downstream writers producing threads, LinkedIn posts and blogs. Provide enough raw data, quotes and hooks for them to work with.
- Some sources may be replaced by a note saying they could not be retrieved. Use general knowledge of the referenced URL for those and say so in key_contribution.

Output Format (STRICT JSON ONLY, no markdown fences):
{
  "metadata": {
    "project_title": "A compelling title synthesized from all sources",
    "sources_processed": ["list of URLs or types found"],
    "overall_narrative": "A 2-sentence summary of the unified message"
  },
  "source_analysis": [
    {
      "source_index": 0,
      "key_contribution": "What unique value did this specific source add?",
      "top_3_points": ["Point 1", "Point 2", "Point 3"]
    }
  ],
  "knowledge_core": {
    "themes": [
      {"topic": "Theme name", "details": "Deep explanation synthesized from multiple sources", "source_refs": [0, 1]}
    ],
    "gold_nuggets": [
      {"content": "A powerful quote, stat, or insight", "origin": "Source name/type"}
    ],
    "frameworks": ["Named entities, tools, or methods discovered"]
  },
  "social_fuel": {
    "hooks": {
      "aggressive": "A controversial or high-stakes hook",
      "educational": "A value-first how-to hook",
      "story": "A narrative/personal journey hook"
    },
    "visual_brief": "A specific description for an AI image generator that captures the soul of this content"
  }
}`

// DeconstructPrompt turns a single video into a Knowledge Core.
const DeconstructPrompt = `Role: You are the Lead Content Strategist and Semantic Architect.
Input: A raw video from a YouTube URL.
Objective: Deconstruct the video into its fundamental "Knowledge Core". Downstream writers will use it to create threads, LinkedIn posts, blogs and images.

1. Extraction Guidelines
Narrative Arcs: Identify the 3-5 main acts or chapters of the video.
Gold Nuggets: Extract exact quotes that are provocative, counter-intuitive, or highly emotional.
Data & Entities: Capture all specific numbers, names of people or tools, and unique frameworks mentioned.
Visual Cues: Describe the visual vibe and specific scenes that would make compelling social images or thumbnails.

2. Output Format (STRICT JSON ONLY)
Return only a valid JSON object with no prose and no markdown outside it:
{
  "metadata": {
    "title": "Extracted Title",
    "tone": "e.g. Authoritative, Enthusiastic, Controversial",
    "target_audience": "e.g. SaaS Founders, Personal Growth Enthusiasts"
  },
  "semantic_core": {
    "key_takeaways": [{"point": "Main Idea", "supporting_detail": "Explanation from video"}],
    "gold_nuggets": [{"quote": "Direct quote here", "context": "Why this matters"}],
    "frameworks_or_entities": {
      "named_entities": ["Person A", "Tool B", "Company C"],
      "proprietary_methods": ["The XYZ Method"]
    }
  },
  "visual_brief": {
    "aesthetic": "e.g. Minimalist tech, vibrant energetic, dark studio",
    "image_prompts": ["A high-quality image of [Subject] doing [Action] in [Setting], cinematic lighting."]
  },
  "content_hooks": {
    "thread_opener": "The most controversial hook extracted from the video.",
    "linkedin_hook": "The professional/business-value hook."
  }
}`

// SocialSystemPrompt constrains every platform generation call.
const SocialSystemPrompt = `Role: You are an expert Social Media Ghostwriter specializing in viral growth on X (Twitter), high-authority thought leadership on LinkedIn and long-form blogging.
Input: A "Knowledge Core" JSON object (or its raw text) containing the essence of one or more sources.
Constraint: Do not invent new facts. Use only the gold nuggets, takeaways and data present in the Knowledge Core.

Style Guidelines
For X (Twitter): Use a thread format. Start with a hook that stops the scroll. Use short, punchy sentences. End with a call to action or a provocative question. No hashtags.
For LinkedIn: Use a professional storytelling tone. Focus on business value, lessons learned or industry shifts. Use white space between paragraphs. Add 3-5 relevant hashtags.
For blogs: Use markdown with a title, an introduction, sections with headings and a conclusion.
Emojis sparingly. Return a strictly valid JSON object.`

// Draft keys of the social generator's JSON reply.
const (
	KeyTwitterThread = "twitter_thread"
	KeyLinkedInPost  = "linkedin_post"
	KeyBlogPost      = "blog_post"
	KeyImageCaption  = "image_caption"
	KeySummary       = "summary"
)

var platformInstructions = map[string]string{
	KeyTwitterThread: `Write 1 viral X thread. Output {"twitter_thread": ["Tweet 1", "Tweet 2", ...]}.`,
	KeyLinkedInPost:  `Write 1 authority-building LinkedIn post. Output {"linkedin_post": "Full post"}.`,
	KeyBlogPost:      `Write 1 blog article in markdown. Output {"blog_post": "Full article"}.`,
	KeyImageCaption:  `Write a detailed prompt for an AI image generator followed by a one-line social caption. Output {"image_caption": "Prompt and caption"}.`,
	KeySummary:       `Write an executive summary of 5 bullet points. Output {"summary": "Bullet list"}.`,
}

// GenerationPrompt asks for the draft stored under key.
// Hooks already in the core are offered as openers.
func GenerationPrompt(key, core string, hooks map[string]string) string {
	instruction, ok := platformInstructions[key]
	if !ok {
		instruction = fmt.Sprintf(`Output {%q: "content"}.`, key)
	}
	prompt := fmt.Sprintf("Using the following Knowledge Core: %s\n\nKnowledge Core:\n%s", instruction, core)
	if len(hooks) == 0 {
		return prompt
	}

	styles := make([]string, 0, len(hooks))
	for style := range hooks {
		styles = append(styles, style)
	}
	sort.Strings(styles)

	var sb strings.Builder
	sb.WriteString(prompt)
	sb.WriteString("\n\nSeed hooks (open with one of these or improve on them):\n")
	for _, style := range styles {
		fmt.Fprintf(&sb, "- %s: %s\n", style, hooks[style])
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// CombinedGenerationPrompt is the legacy request for a thread and a LinkedIn
// post in one reply.
func CombinedGenerationPrompt(core string) string {
	return fmt.Sprintf("Using the following Knowledge Core, generate 1 viral X thread and 1 authority-building LinkedIn post.\n"+
		"Output {\"twitter_thread\": [\"Tweet 1\", ...], \"linkedin_post\": \"Full post\"}.\n\nKnowledge Core:\n%s", core)
}

// RefinementPrompt asks for an updated version of one existing draft.
func RefinementPrompt(key, target, existing, instruction, core string) string {
	var sb strings.Builder
	sb.WriteString("Refinement Request:\n")
	fmt.Fprintf(&sb, "Target Platform: %s\n", target)
	fmt.Fprintf(&sb, "Original Content: %s\n", existing)
	fmt.Fprintf(&sb, "Instruction: %s\n", instruction)
	fmt.Fprintf(&sb, "Context (Knowledge Core): %s\n\n", core)
	fmt.Fprintf(&sb, "Output only the updated version of that platform's content under the same JSON key (e.g. {%q: ...}).", key)
	return sb.String()
}
