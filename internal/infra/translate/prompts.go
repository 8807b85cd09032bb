package translate

// Prompt templates for the fallback translator. The system prompt pins
// the output contract (target dialect statements only, no commentary);
// the user templates carry the object and its context.

const systemPrompt = `You are a database migration assistant. You convert Oracle schema object definitions (DDL, PL/SQL) to the requested target dialect.
Rules:
- Output ONLY the converted statement text, no explanations, no markdown fences.
- Preserve object and column names unless the target dialect forbids them.
- Convert data types, identity clauses, and procedural constructs to the closest target equivalent.
- Never emit row-level data, INSERT statements with literal values, or sample rows.`

const convertTemplate = `Convert the following Oracle %s to %s.

Source definition:
%s
%s`

const repairTemplate = `The following %s was converted from Oracle to %s, but deployment failed. Produce a corrected version of the converted text.

Original Oracle source:
%s

Current converted text (failed to deploy):
%s

Deployment error (%s):
%s
%s
Return the full corrected statement text.`

const patternsHeader = `
Previous successful conversions of the same object kind used these fixes:
`

const memoryHitsHeader = `
Known fixes for this error from earlier migrations:
`

const searchHitsHeader = `
Relevant solutions found online:
`
